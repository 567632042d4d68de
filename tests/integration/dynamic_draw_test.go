package integration

import (
	"net/http"
	"testing"
	"time"

	"github.com/santasdraw/server/pkg/models"
)

func createDynamicDraw(t *testing.T, baseURL, bearer string, body map[string]interface{}) (drawID, inviteCode string) {
	t.Helper()

	var resp struct {
		Success    bool   `json:"success"`
		DrawID     string `json:"drawId"`
		InviteCode string `json:"inviteCode"`
	}
	status := doJSON(t, http.MethodPost, baseURL+"/api/v1/draws/dynamic", bearer, body, &resp)
	if status != http.StatusCreated {
		t.Fatalf("create dynamic draw status = %d, want 201", status)
	}
	if resp.DrawID == "" || resp.InviteCode == "" {
		t.Fatalf("response = %+v", resp)
	}
	return resp.DrawID, resp.InviteCode
}

func organizerBody() map[string]interface{} {
	return map[string]interface{}{
		"participants": []map[string]string{{
			"firstName": "Olga",
			"lastName":  "Organizer",
			"email":     "organizer@example.com",
		}},
	}
}

func TestCreateDynamicDraw(t *testing.T) {
	srv, db, cleanup := testServer(t)
	defer cleanup()

	tok := registerUser(t, srv.URL, "organizer@example.com")
	drawID, code := createDynamicDraw(t, srv.URL, tok, organizerBody())

	d, err := db.GetDraw(drawID)
	if err != nil {
		t.Fatalf("GetDraw: %v", err)
	}
	if d.Status != models.StatusActive {
		t.Errorf("status = %q, want active", d.Status)
	}
	if d.DrawType != models.TypeDynamic {
		t.Errorf("draw type = %q, want dynamic", d.DrawType)
	}
	if d.InviteCode != code {
		t.Errorf("stored invite code %q, response said %q", d.InviteCode, code)
	}
	if d.CreatorID == "" {
		t.Error("dynamic draw has no creator")
	}

	n, _ := db.CountParticipants(drawID)
	if n != 1 {
		t.Errorf("participant count = %d, want 1 (the organizer)", n)
	}
}

func TestCreateDynamicDraw_RequiresAuth(t *testing.T) {
	srv, _, cleanup := testServer(t)
	defer cleanup()

	status := doJSON(t, http.MethodPost, srv.URL+"/api/v1/draws/dynamic", "", organizerBody(), nil)
	if status != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", status)
	}
}

func TestCreateDynamicDraw_RequiresOrganizerParticipant(t *testing.T) {
	srv, _, cleanup := testServer(t)
	defer cleanup()

	tok := registerUser(t, srv.URL, "organizer@example.com")
	status := doJSON(t, http.MethodPost, srv.URL+"/api/v1/draws/dynamic", tok, map[string]interface{}{
		"participants": []map[string]string{},
	}, nil)
	if status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", status)
	}
}

func TestCreateDynamicDraw_DrawDateRules(t *testing.T) {
	srv, _, cleanup := testServer(t)
	defer cleanup()

	tok := registerUser(t, srv.URL, "organizer@example.com")

	cases := []struct {
		name string
		date time.Time
	}{
		{"past", time.Now().UTC().Add(-24 * time.Hour).Truncate(time.Hour)},
		{"not an exact hour", time.Now().UTC().Truncate(time.Hour).Add(2*time.Hour + 30*time.Minute)},
		{"next year", time.Date(time.Now().UTC().Year()+1, 6, 1, 12, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		body := organizerBody()
		body["drawDate"] = tc.date.Format(time.RFC3339)
		status := doJSON(t, http.MethodPost, srv.URL+"/api/v1/draws/dynamic", tok, body, nil)
		if status != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", tc.name, status)
		}
	}

	body := organizerBody()
	body["drawDate"] = nextExactHour(t).Format(time.RFC3339)
	status := doJSON(t, http.MethodPost, srv.URL+"/api/v1/draws/dynamic", tok, body, nil)
	if status != http.StatusCreated {
		t.Errorf("valid date: status = %d, want 201", status)
	}
}
