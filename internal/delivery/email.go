package delivery

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	appconfig "github.com/brightops/adpulse/internal/config"
)

// Emailer sends the report email through AWS SES v2.
type Emailer struct {
	client   *sesv2.Client
	from     string
	fromName string
	to       []string
}

// NewEmailer builds the SES client from static credentials. It returns
// nil when the email channel is not configured.
func NewEmailer(ctx context.Context, cfg appconfig.EmailConfig) (*Emailer, error) {
	if !cfg.Configured() {
		return nil, nil
	}

	creds := credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(creds),
	)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &Emailer{
		client:   sesv2.NewFromConfig(awsCfg),
		from:     cfg.From,
		fromName: cfg.FromName,
		to:       cfg.Recipients(),
	}, nil
}

// Send delivers the report: HTML body with a plain-text alternative,
// plus the full HTML dashboard attached for offline viewing.
func (e *Emailer) Send(ctx context.Context, subject, textBody, htmlBody string) error {
	raw := buildRawMessage(e.fromAddress(), e.to, subject, textBody, htmlBody)

	_, err := e.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(e.from),
		Destination:      &types.Destination{ToAddresses: e.to},
		Content: &types.EmailContent{
			Raw: &types.RawMessage{Data: raw},
		},
	})
	if err != nil {
		return fmt.Errorf("sending report email: %w", err)
	}
	return nil
}

func (e *Emailer) fromAddress() string {
	if e.fromName == "" {
		return e.from
	}
	return fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", e.fromName), e.from)
}

// buildRawMessage assembles the multipart MIME message by hand. SES v2
// simple content cannot carry attachments, so the dashboard attachment
// forces the raw path.
func buildRawMessage(from string, to []string, subject, textBody, htmlBody string) []byte {
	altBoundary := "alt-" + boundaryToken()
	mixedBoundary := "mixed-" + boundaryToken()

	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mixedBoundary)

	fmt.Fprintf(&b, "--%s\r\n", mixedBoundary)
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", altBoundary)

	fmt.Fprintf(&b, "--%s\r\n", altBoundary)
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("Content-Transfer-Encoding: base64\r\n\r\n")
	writeBase64(&b, []byte(textBody))

	fmt.Fprintf(&b, "--%s\r\n", altBoundary)
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	b.WriteString("Content-Transfer-Encoding: base64\r\n\r\n")
	writeBase64(&b, []byte(htmlBody))
	fmt.Fprintf(&b, "--%s--\r\n", altBoundary)

	fmt.Fprintf(&b, "--%s\r\n", mixedBoundary)
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	b.WriteString("Content-Disposition: attachment; filename=\"marketing-pulse.html\"\r\n")
	b.WriteString("Content-Transfer-Encoding: base64\r\n\r\n")
	writeBase64(&b, []byte(htmlBody))
	fmt.Fprintf(&b, "--%s--\r\n", mixedBoundary)

	return b.Bytes()
}

func writeBase64(b *bytes.Buffer, data []byte) {
	encoded := base64.StdEncoding.EncodeToString(data)
	// RFC 2045 caps encoded lines at 76 characters.
	for len(encoded) > 76 {
		b.WriteString(encoded[:76])
		b.WriteString("\r\n")
		encoded = encoded[76:]
	}
	b.WriteString(encoded)
	b.WriteString("\r\n")
}

func boundaryToken() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}
