package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	membershipdomain "github.com/chairbook/chairbook/internal/membership/domain"
	tenantdomain "github.com/chairbook/chairbook/internal/tenant/domain"
)

func TestNonMemberLooksLikeUnknownShop(t *testing.T) {
	deniedStatus, deniedBody := mapError(membershipdomain.ErrNotMember)
	missingStatus, missingBody := mapError(tenantdomain.ErrTenantNotFound)

	assert.Equal(t, http.StatusNotFound, deniedStatus)
	assert.Equal(t, missingStatus, deniedStatus)
	assert.Equal(t, missingBody, deniedBody)
}

func TestInsufficientRoleStaysForbidden(t *testing.T) {
	status, payload := mapError(membershipdomain.ErrInsufficientRole)

	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "forbidden", payload.Type)
}
