package integration

import (
	"net/http"
	"testing"
)

func joiner(email string) map[string]string {
	return map[string]string{
		"firstName": "Jo",
		"lastName":  "Joiner",
		"email":     email,
		"address":   "12 Main St",
		"phone":     "+15551234567",
	}
}

func TestJoinDraw(t *testing.T) {
	srv, db, cleanup := testServer(t)
	defer cleanup()

	tok := registerUser(t, srv.URL, "organizer@example.com")
	drawID, code := createDynamicDraw(t, srv.URL, tok, organizerBody())

	var resp struct {
		Success       bool   `json:"success"`
		DrawID        string `json:"drawId"`
		ParticipantID string `json:"participantId"`
	}
	status := doJSON(t, http.MethodPost, srv.URL+"/api/v1/draws/join/"+code, "", joiner("bob@example.com"), &resp)
	if status != http.StatusCreated {
		t.Fatalf("join status = %d, want 201", status)
	}
	if resp.DrawID != drawID || resp.ParticipantID == "" {
		t.Fatalf("response = %+v", resp)
	}

	n, _ := db.CountParticipants(drawID)
	if n != 2 {
		t.Errorf("participant count = %d, want 2", n)
	}
}

func TestJoinDraw_UnknownCode(t *testing.T) {
	srv, _, cleanup := testServer(t)
	defer cleanup()

	status := doJSON(t, http.MethodPost, srv.URL+"/api/v1/draws/join/jolly-nobody-999", "", joiner("bob@example.com"), nil)
	if status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", status)
	}
}

func TestJoinDraw_DuplicateEmail(t *testing.T) {
	srv, _, cleanup := testServer(t)
	defer cleanup()

	tok := registerUser(t, srv.URL, "organizer@example.com")
	_, code := createDynamicDraw(t, srv.URL, tok, organizerBody())

	if status := doJSON(t, http.MethodPost, srv.URL+"/api/v1/draws/join/"+code, "", joiner("bob@example.com"), nil); status != http.StatusCreated {
		t.Fatalf("first join status = %d, want 201", status)
	}

	var resp struct {
		Error string `json:"error"`
	}
	status := doJSON(t, http.MethodPost, srv.URL+"/api/v1/draws/join/"+code, "", joiner("bob@example.com"), &resp)
	if status != http.StatusConflict {
		t.Fatalf("duplicate join status = %d, want 409", status)
	}
	if resp.Error != "email already registered in this draw" {
		t.Errorf("error = %q", resp.Error)
	}
}

func TestJoinDraw_RequiredFieldsEnforced(t *testing.T) {
	srv, _, cleanup := testServer(t)
	defer cleanup()

	tok := registerUser(t, srv.URL, "organizer@example.com")
	body := organizerBody()
	body["addressRequired"] = true
	body["participants"].([]map[string]string)[0]["address"] = "HQ"
	_, code := createDynamicDraw(t, srv.URL, tok, body)

	p := joiner("bob@example.com")
	p["address"] = "   "
	status := doJSON(t, http.MethodPost, srv.URL+"/api/v1/draws/join/"+code, "", p, nil)
	if status != http.StatusBadRequest {
		t.Errorf("whitespace address status = %d, want 400", status)
	}
}

func TestJoinDraw_ClosedAfterExecution(t *testing.T) {
	srv, _, cleanup := testServer(t)
	defer cleanup()

	tok := registerUser(t, srv.URL, "organizer@example.com")
	drawID, code := createDynamicDraw(t, srv.URL, tok, organizerBody())

	doJSON(t, http.MethodPost, srv.URL+"/api/v1/draws/join/"+code, "", joiner("bob@example.com"), nil)
	doJSON(t, http.MethodPost, srv.URL+"/api/v1/draws/join/"+code, "", joiner("carol@example.com"), nil)

	if status := doJSON(t, http.MethodPost, srv.URL+"/api/v1/draws/"+drawID+"/execute", tok, nil, nil); status != http.StatusOK {
		t.Fatalf("execute status = %d, want 200", status)
	}

	status := doJSON(t, http.MethodPost, srv.URL+"/api/v1/draws/join/"+code, "", joiner("dave@example.com"), nil)
	if status != http.StatusConflict {
		t.Errorf("join after execution status = %d, want 409", status)
	}
}

func TestDrawPublicInfo(t *testing.T) {
	srv, _, cleanup := testServer(t)
	defer cleanup()

	tok := registerUser(t, srv.URL, "organizer@example.com")
	body := organizerBody()
	body["phoneNumberRequired"] = true
	body["participants"].([]map[string]string)[0]["phone"] = "+15550000000"
	drawID, code := createDynamicDraw(t, srv.URL, tok, body)

	var info struct {
		ID               string `json:"id"`
		RequireAddress   bool   `json:"requireAddress"`
		RequirePhone     bool   `json:"requirePhone"`
		Status           string `json:"status"`
		ParticipantCount int    `json:"participantCount"`
	}
	status := doJSON(t, http.MethodGet, srv.URL+"/api/v1/draws/join/"+code, "", nil, &info)
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if info.ID != drawID {
		t.Errorf("id = %q, want %q", info.ID, drawID)
	}
	if !info.RequirePhone || info.RequireAddress {
		t.Errorf("requirement flags = %+v", info)
	}
	if info.Status != "active" {
		t.Errorf("status = %q, want active", info.Status)
	}
	if info.ParticipantCount != 1 {
		t.Errorf("participantCount = %d, want 1", info.ParticipantCount)
	}

	if status := doJSON(t, http.MethodGet, srv.URL+"/api/v1/draws/join/unknown-code-123", "", nil, nil); status != http.StatusNotFound {
		t.Errorf("unknown code status = %d, want 404", status)
	}
}
