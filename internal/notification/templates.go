package notification

import (
	"bytes"
	"html/template"
)

var cancellationTmpl = template.Must(template.New("cancellation").Parse(`
<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1 style="color: #dc2626;">Gym Web</h1>
  <h2>Hello {{.Name}},</h2>
  <p>Your workout session has been cancelled.</p>
  <div style="background: #f3f4f6; padding: 16px; border-radius: 8px;">
    <p><strong>Session:</strong> {{.Notes}}</p>
    <p><strong>Date:</strong> {{.SessionDate}}</p>
    <p><strong>Time:</strong> {{.SessionTime}}</p>
    <p><strong>Reason:</strong> {{.Reason}}</p>
  </div>
  <p>We apologize for the inconvenience. You can book a new session at any convenient time.</p>
  <p style="color: #6b7280; font-size: 12px;">This is an automated email from Gym Web. Please do not reply.</p>
</div>
`))

var otpTmpl = template.Must(template.New("otp").Parse(`
<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1 style="color: #dc2626;">Gym Web</h1>
  <h2>Hello {{.Name}},</h2>
  <p>We received a request to reset your password. Use the following code to continue:</p>
  <div style="background: #f3f4f6; padding: 24px; border-radius: 8px; text-align: center;">
    <h1 style="letter-spacing: 4px; font-family: monospace;">{{.Code}}</h1>
    <p style="color: #6b7280;">This code is valid for 5 minutes.</p>
  </div>
  <p style="color: #6b7280; font-size: 12px;">If you did not request a password reset, you can ignore this email.</p>
</div>
`))

func renderCancellation(data CancellationData) (string, error) {
	var buf bytes.Buffer
	if err := cancellationTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderOTP(name, code string) (string, error) {
	var buf bytes.Buffer
	err := otpTmpl.Execute(&buf, struct {
		Name string
		Code string
	}{name, code})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
