package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/model"
	"storefront/internal/infra/db/dbtest"
)

func TestEnquiry_AnonymousAndLoggedIn(t *testing.T) {
	s := newTestServer(t)
	user := dbtest.CreateUser(t, s.db, "curious")

	msg := map[string]string{"name": "Guest", "email": "guest@example.com", "subject": "Shipping", "message": "Do you ship to Goa?"}

	rec := s.do(t, request{method: http.MethodPost, path: "/api/enquiries", body: msg})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, request{method: http.MethodPost, path: "/api/enquiries", body: msg, auth: s.bearer(t, user)})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var list []model.Enquiry
	require.NoError(t, s.db.Order("id").Find(&list).Error)
	require.Len(t, list, 2)
	assert.Nil(t, list[0].UserID)
	require.NotNil(t, list[1].UserID)
	assert.Equal(t, user.ID, *list[1].UserID)
}

func TestEnquiry_Validation(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, request{method: http.MethodPost, path: "/api/enquiries", body: map[string]string{"email": "not-mail"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	fields := decode(t, rec)["fields"].(map[string]interface{})
	assert.Contains(t, fields, "subject")
	assert.Contains(t, fields, "message")
	assert.Contains(t, fields, "email")
}
