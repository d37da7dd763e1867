package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGetUpdatesAdvancesOffset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok": true,
			"result": []map[string]any{
				{"update_id": 10, "message": map[string]any{"message_id": 1, "chat": map[string]any{"id": 5, "type": "private"}, "text": "a"}},
				{"update_id": 12, "message": map[string]any{"message_id": 2, "chat": map[string]any{"id": 5, "type": "private"}, "text": "b"}},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL, "token")
	updates, next, err := c.GetUpdates(context.Background(), 0, time.Second)
	if err != nil {
		t.Fatalf("GetUpdates: %v", err)
	}
	if len(updates) != 2 {
		t.Fatalf("got %d updates, want 2", len(updates))
	}
	if next != 13 {
		t.Errorf("next offset = %d, want 13", next)
	}
	if updates[1].Message.Text != "b" {
		t.Errorf("second update text = %q", updates[1].Message.Text)
	}
}

func TestOKFalseIsRequestError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok": false, "error_code": 403, "description": "bot was kicked",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL, "token")
	err := c.SendMessage(context.Background(), 1, "hi", nil)
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected *RequestError, got %v", err)
	}
	if reqErr.ErrorCode != 403 {
		t.Errorf("error code = %d, want 403", reqErr.ErrorCode)
	}
}

func TestGetChatMember(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["chat_id"] != float64(7) || body["user_id"] != float64(8) {
			t.Errorf("unexpected params: %v", body)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok": true,
			"result": map[string]any{
				"status": "administrator", "can_delete_messages": true,
				"user": map[string]any{"id": 8},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL, "token")
	m, err := c.GetChatMember(context.Background(), 7, 8)
	if err != nil {
		t.Fatalf("GetChatMember: %v", err)
	}
	if m.Status != "administrator" || !m.CanDeleteMessages {
		t.Errorf("member = %+v", m)
	}
}

func TestDisplayName(t *testing.T) {
	cases := []struct {
		u    *User
		want string
	}{
		{nil, ""},
		{&User{FirstName: "Ada", LastName: "L"}, "Ada L"},
		{&User{FirstName: "Ada"}, "Ada"},
		{&User{Username: "ada"}, "@ada"},
		{&User{}, ""},
	}
	for _, c := range cases {
		if got := DisplayName(c.u); got != c.want {
			t.Errorf("DisplayName(%+v) = %q, want %q", c.u, got, c.want)
		}
	}
}

func TestIsGroup(t *testing.T) {
	if !IsGroup("group") || !IsGroup("supergroup") {
		t.Error("group/supergroup must be groups")
	}
	if IsGroup("private") || IsGroup("channel") {
		t.Error("private/channel must not be groups")
	}
}
