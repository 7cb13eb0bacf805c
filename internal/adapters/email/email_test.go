package email

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNoopSender_RecordsSends(t *testing.T) {
	s := NewNoopSender()
	res, err := s.Send(context.Background(), SendRequest{To: []string{"jane@example.com"}, Subject: "hi"})
	require.NoError(t, err)
	require.Equal(t, "noop-1", res.MessageID)

	sent := s.Sent()
	require.Len(t, sent, 1)
	require.Equal(t, "hi", sent[0].Subject)
}

func TestResendTags_SortedByName(t *testing.T) {
	tags := resendTags(map[string]string{"kind": "customer", "category": "password_reset"})
	require.Len(t, tags, 2)
	require.Equal(t, "category", tags[0].Name)
	require.Equal(t, "password_reset", tags[0].Value)
	require.Nil(t, resendTags(nil))
}

func TestResendSender_RejectsNoRecipients(t *testing.T) {
	s := NewResendSender("re_test", "Gym <noreply@example.com>", "")
	_, err := s.Send(context.Background(), SendRequest{Subject: "x"})
	require.Error(t, err)
}

func TestFirstNonEmpty(t *testing.T) {
	require.Equal(t, "b", firstNonEmpty("", "b", "c"))
	require.Equal(t, "", firstNonEmpty("", ""))
}
