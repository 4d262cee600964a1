package oauth

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
)

// GmailTokenSource builds a token source from a service account key with
// domain-wide delegation. Mail is sent on behalf of subject.
func GmailTokenSource(ctx context.Context, credentialsPath, subject string) (oauth2.TokenSource, error) {
	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("can't read credentials: %w", err)
	}

	conf, err := google.JWTConfigFromJSON(data, gmail.GmailSendScope)
	if err != nil {
		return nil, fmt.Errorf("can't parse credentials: %w", err)
	}
	conf.Subject = subject

	return conf.TokenSource(ctx), nil
}
