// SPDX-License-Identifier: MIT

package result_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/actionlock/actionlock/result"
)

func TestKindString(t *testing.T) {
	cases := []struct {
		kind result.Kind
		want string
	}{
		{result.KindUnknown, "Unknown"},
		{result.KindInputMalformed, "InputMalformed"},
		{result.KindReferenceInvalid, "ReferenceInvalid"},
		{result.KindDescriptorUnavailable, "DescriptorUnavailable"},
		{result.KindRemoteTransient, "RemoteTransient"},
		{result.KindReferenceDepthExceeded, "ReferenceDepthExceeded"},
		{result.KindVerificationMismatch, "VerificationMismatch"},
		{result.KindPolicyViolation, "PolicyViolation"},
		{result.Kind(99), "Unknown"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.kind.String())
	}
}

func TestWrap_NilErrReturnsNil(t *testing.T) {
	assert.Nil(t, result.Wrap(result.KindInputMalformed, "op", nil))
}

func TestWrap_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("boom")
	wrapped := result.Wrap(result.KindRemoteTransient, "resolveRef owner/repo", cause)

	assert.Equal(t, "RemoteTransient: resolveRef owner/repo: boom", wrapped.Error())
	assert.Equal(t, cause, errors.Unwrap(wrapped))
	assert.ErrorIs(t, wrapped, cause)

	var target *result.Error
	assert.ErrorAs(t, wrapped, &target)
	assert.Equal(t, result.KindRemoteTransient, target.Kind)
}

func TestWrap_NoOpOmitsItFromMessage(t *testing.T) {
	cause := errors.New("boom")
	wrapped := result.Wrap(result.KindInputMalformed, "", cause)
	assert.Equal(t, "InputMalformed: boom", wrapped.Error())
}
