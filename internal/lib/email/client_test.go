package email

import (
	"context"
	"errors"
	"testing"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []*resend.SendEmailRequest
	err  error
}

func (f *fakeSender) SendWithContext(_ context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, params)
	return &resend.SendEmailResponse{Id: "em_1"}, nil
}

func TestRender_Welcome(t *testing.T) {
	html, err := Render(TemplateWelcome, PreviewData[TemplateWelcome])
	require.NoError(t, err)

	assert.Contains(t, html, "Willkommen, Ana!")
	assert.Contains(t, html, "<strong>Ausbilder</strong>")
	assert.Contains(t, html, "Abteilung: IT")
}

func TestRender_EscapesInput(t *testing.T) {
	html, err := Render(TemplateWelcome, WelcomeData{FirstName: "<script>", Role: "Azubi"})
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}

func TestRender_UnknownTemplate(t *testing.T) {
	_, err := Render(Template("missing"), nil)
	assert.Error(t, err)
}

func TestSendWelcomeEmail(t *testing.T) {
	sender := &fakeSender{}
	logger := zerolog.Nop()
	client := NewClientWithSender(sender, "noreply@example.com", &logger)

	err := client.SendWelcomeEmail(context.Background(), "ben@x.com", WelcomeData{FirstName: "Ben", Role: "Auszubildender"})
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"ben@x.com"}, sender.sent[0].To)
	assert.Equal(t, "Ausbildungsregister <noreply@example.com>", sender.sent[0].From)
	assert.Contains(t, sender.sent[0].Html, "Willkommen, Ben!")
}

func TestSendWelcomeEmail_ProviderError(t *testing.T) {
	sender := &fakeSender{err: errors.New("rate limited")}
	logger := zerolog.Nop()
	client := NewClientWithSender(sender, "noreply@example.com", &logger)

	err := client.SendWelcomeEmail(context.Background(), "ben@x.com", WelcomeData{FirstName: "Ben"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send email")
}
