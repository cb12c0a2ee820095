package mailer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imagify/imagify-server/internal/model"
)

func TestRender_CodeKinds(t *testing.T) {
	for _, kind := range []model.EmailKind{model.EmailVerificationCode, model.EmailResetCode} {
		subject, body, err := render(model.Email{Kind: kind, To: "a@b.c", Code: 123456})
		require.NoError(t, err)
		assert.NotEmpty(t, subject)
		assert.Contains(t, body, "123456")
		assert.Contains(t, body, "15 minutes")
	}
}

func TestRender_NoticeKinds(t *testing.T) {
	subject, body, err := render(model.Email{Kind: model.EmailNewDevice, To: "a@b.c", IP: "10.0.0.1", Device: "android"})
	require.NoError(t, err)
	assert.True(t, strings.Contains(subject, "device") || strings.Contains(subject, "Device"))
	assert.Contains(t, body, "10.0.0.1")
	assert.Contains(t, body, "android")
}

func TestRender_UnknownKind(t *testing.T) {
	_, _, err := render(model.Email{Kind: "bogus"})
	assert.Error(t, err)
}
