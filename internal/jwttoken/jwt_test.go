package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "veristaff/pkg/domain"
	dErrors "veristaff/pkg/domain-errors"
)

var (
	service = NewService("test-signing-key", "veristaff-test", time.Hour)
	userID  = id.NewUserID()
	orgID   = id.NewOrgID()
)

func Test_GenerateAndValidate(t *testing.T) {
	token, err := service.Generate(userID, &orgID, "admin", time.Now())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, orgID.String(), claims.OrgID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "veristaff-test", claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func Test_Generate_NoOrg(t *testing.T) {
	token, err := service.Generate(userID, nil, "platform_admin", time.Now())
	require.NoError(t, err)

	claims, err := service.Validate(token)
	require.NoError(t, err)
	assert.Empty(t, claims.OrgID)
}

func Test_Validate_InvalidToken(t *testing.T) {
	_, err := service.Validate("invalid-token-string")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_Validate_ExpiredToken(t *testing.T) {
	token, err := service.Generate(userID, &orgID, "admin", time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	_, err = service.Validate(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_Validate_WrongKey(t *testing.T) {
	other := NewService("other-signing-key", "veristaff-test", time.Hour)
	token, err := other.Generate(userID, &orgID, "admin", time.Now())
	require.NoError(t, err)

	_, err = service.Validate(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
