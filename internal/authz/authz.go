// Package authz decides whether a user may run privileged bot commands.
package authz

// Policy is built once from configuration and is safe for concurrent use.
type Policy struct {
	ownerID int64
	sudoIDs map[int64]bool
}

func New(ownerID int64, sudoIDs []int64) *Policy {
	sudo := make(map[int64]bool, len(sudoIDs))
	for _, id := range sudoIDs {
		if id != 0 {
			sudo[id] = true
		}
	}
	return &Policy{ownerID: ownerID, sudoIDs: sudo}
}

func (p *Policy) OwnerID() int64 { return p.ownerID }

// IsOwner never matches when no owner is configured (ownerID == 0).
func (p *Policy) IsOwner(userID int64) bool {
	return p.ownerID != 0 && userID == p.ownerID
}

func (p *Policy) IsSudo(userID int64) bool {
	return p.sudoIDs[userID]
}

func (p *Policy) IsOwnerOrSudo(userID int64) bool {
	return p.IsOwner(userID) || p.IsSudo(userID)
}

func (p *Policy) SudoIDs() []int64 {
	out := make([]int64, 0, len(p.sudoIDs))
	for id := range p.sudoIDs {
		out = append(out, id)
	}
	return out
}
