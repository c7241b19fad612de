package resend

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/resend/resend-go/v2"
)

type ResendNotifier struct {
	ApiKey string
	From   string
	Email  string
}

const htmlTemplate = `
<p>These habits are still open today, with {{.Hours}} hours left to keep their streaks going:</p>
<ul>
{{range .Habits}}
  <li>{{.}}</li>
{{end}}
</ul>
`

var tmpl = template.Must(template.New("email").Parse(htmlTemplate))

func renderBody(habits []string, hoursLeft int) (string, error) {
	data := struct {
		Habits []string
		Hours  int
	}{
		Habits: habits,
		Hours:  hoursLeft,
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *ResendNotifier) SendNudge(ctx context.Context, habits []string, hoursLeft int) error {
	body, err := renderBody(habits, hoursLeft)
	if err != nil {
		return err
	}

	client := resend.NewClient(r.ApiKey)
	params := &resend.SendEmailRequest{
		From:    r.From,
		To:      []string{r.Email},
		Subject: fmt.Sprintf("%d habit(s) still open today", len(habits)),
		Html:    body,
	}

	_, err = client.Emails.SendWithContext(ctx, params)
	return err
}
