// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversations_CreatePrivate(t *testing.T) {
	a := newAPI(t)
	_, aliceBearer := a.loginAs(t, "alice@example.com", "student")
	bob, _ := a.loginAs(t, "bob@example.com", "student")

	rec := a.do(t, http.MethodPost, "/api/v1/conversations", aliceBearer, map[string]any{
		"kind":            "private",
		"participant_ids": []string{bob.ID},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	conv, ok := decode(t, rec)["conversation"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "private", conv["kind"])

	participants, _ := conv["participant_ids"].([]any)
	assert.Len(t, participants, 2)
}

func TestConversations_UnknownKind(t *testing.T) {
	a := newAPI(t)
	_, bearer := a.loginAs(t, "alice@example.com", "student")

	rec := a.do(t, http.MethodPost, "/api/v1/conversations", bearer, map[string]any{
		"kind":            "broadcast",
		"participant_ids": []string{"someone"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid conversation type")
}

func TestConversations_PrivateNeedsExactlyTwo(t *testing.T) {
	a := newAPI(t)
	_, aliceBearer := a.loginAs(t, "alice@example.com", "student")
	bob, _ := a.loginAs(t, "bob@example.com", "student")
	carol, _ := a.loginAs(t, "carol@example.com", "student")

	// Creator plus two others is three participants.
	rec := a.do(t, http.MethodPost, "/api/v1/conversations", aliceBearer, map[string]any{
		"kind":            "private",
		"participant_ids": []string{bob.ID, carol.ID},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Creator alone is one.
	rec = a.do(t, http.MethodPost, "/api/v1/conversations", aliceBearer, map[string]any{
		"kind":            "private",
		"participant_ids": []string{},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMessages_SendAndList(t *testing.T) {
	a := newAPI(t)
	_, aliceBearer := a.loginAs(t, "alice@example.com", "student")
	bob, bobBearer := a.loginAs(t, "bob@example.com", "student")
	carol, _ := a.loginAs(t, "carol@example.com", "student")

	rec := a.do(t, http.MethodPost, "/api/v1/conversations", aliceBearer, map[string]any{
		"kind":            "group",
		"title":           "Class 7b",
		"participant_ids": []string{bob.ID, carol.ID},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	conv, _ := decode(t, rec)["conversation"].(map[string]any)
	convID, _ := conv["id"].(string)
	require.NotEmpty(t, convID)

	rec = a.do(t, http.MethodPost, "/api/v1/conversations/"+convID+"/messages?type=group",
		aliceBearer, map[string]string{"body": "welcome everyone"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = a.do(t, http.MethodPost, "/api/v1/conversations/"+convID+"/messages?type=group",
		bobBearer, map[string]string{"body": "thanks"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = a.do(t, http.MethodGet, "/api/v1/conversations/"+convID+"/messages?type=group",
		aliceBearer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	messages, _ := decode(t, rec)["messages"].([]any)
	require.Len(t, messages, 2)

	first, _ := messages[0].(map[string]any)
	assert.Equal(t, "welcome everyone", first["body"])
}

func TestMessages_WrongTypeTagDoesNotResolve(t *testing.T) {
	a := newAPI(t)
	_, aliceBearer := a.loginAs(t, "alice@example.com", "student")
	bob, _ := a.loginAs(t, "bob@example.com", "student")

	rec := a.do(t, http.MethodPost, "/api/v1/conversations", aliceBearer, map[string]any{
		"kind":            "private",
		"participant_ids": []string{bob.ID},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	conv, _ := decode(t, rec)["conversation"].(map[string]any)
	convID, _ := conv["id"].(string)

	// Addressing a private conversation as a group one is a 404.
	rec = a.do(t, http.MethodGet, "/api/v1/conversations/"+convID+"/messages?type=group",
		aliceBearer, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// An unknown tag is a validation error.
	rec = a.do(t, http.MethodGet, "/api/v1/conversations/"+convID+"/messages?type=broadcast",
		aliceBearer, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMessages_NonParticipantForbidden(t *testing.T) {
	a := newAPI(t)
	_, aliceBearer := a.loginAs(t, "alice@example.com", "student")
	bob, _ := a.loginAs(t, "bob@example.com", "student")
	_, eveBearer := a.loginAs(t, "eve@example.com", "student")

	rec := a.do(t, http.MethodPost, "/api/v1/conversations", aliceBearer, map[string]any{
		"kind":            "private",
		"participant_ids": []string{bob.ID},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	conv, _ := decode(t, rec)["conversation"].(map[string]any)
	convID, _ := conv["id"].(string)

	rec = a.do(t, http.MethodPost, "/api/v1/conversations/"+convID+"/messages?type=private",
		eveBearer, map[string]string{"body": "let me in"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(t, http.MethodGet, "/api/v1/conversations/"+convID+"/messages?type=private",
		eveBearer, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMessages_SendPublishesEvent(t *testing.T) {
	a := newAPI(t)
	_, aliceBearer := a.loginAs(t, "alice@example.com", "student")
	bob, _ := a.loginAs(t, "bob@example.com", "student")

	rec := a.do(t, http.MethodPost, "/api/v1/conversations", aliceBearer, map[string]any{
		"kind":            "private",
		"participant_ids": []string{bob.ID},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	conv, _ := decode(t, rec)["conversation"].(map[string]any)
	convID, _ := conv["id"].(string)

	events := a.hub.Subscribe(convID, bob.ID)
	defer a.hub.Unsubscribe(convID, events)

	rec = a.do(t, http.MethodPost, "/api/v1/conversations/"+convID+"/messages?type=private",
		aliceBearer, map[string]string{"body": "ping"})
	require.Equal(t, http.StatusCreated, rec.Code)

	select {
	case event := <-events:
		assert.Contains(t, event, "event: message")
		assert.Contains(t, event, "ping")
	default:
		t.Fatal("expected a published event for the new message")
	}
}

func TestMessages_Delete(t *testing.T) {
	a := newAPI(t)
	_, aliceBearer := a.loginAs(t, "alice@example.com", "student")
	bob, _ := a.loginAs(t, "bob@example.com", "student")

	rec := a.do(t, http.MethodPost, "/api/v1/conversations", aliceBearer, map[string]any{
		"kind":            "private",
		"participant_ids": []string{bob.ID},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	conv, _ := decode(t, rec)["conversation"].(map[string]any)
	convID, _ := conv["id"].(string)

	rec = a.do(t, http.MethodPost, "/api/v1/conversations/"+convID+"/messages?type=private",
		aliceBearer, map[string]string{"body": "oops"})
	require.Equal(t, http.StatusCreated, rec.Code)
	msg, _ := decode(t, rec)["message"].(map[string]any)
	msgID, _ := msg["id"].(string)

	rec = a.do(t, http.MethodDelete, "/api/v1/messages/"+msgID, aliceBearer, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = a.do(t, http.MethodDelete, "/api/v1/messages/"+msgID, aliceBearer, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
