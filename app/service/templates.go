package service

import "github.com/vibast-solutions/ms-go-academics/app/entity"

var mailSubjects = map[entity.MessageKind]string{
	entity.KindWelcome:                  "Welcome to the academic request portal",
	entity.KindPasswordResetRequested:   "Password reset requested",
	entity.KindPasswordChanged:          "Your password was changed",
	entity.KindRegistrationConfirmation: "Registration received",
	entity.KindActivityNotice:           "Account activity notice",
}

// Minimal built-in bodies used when the on-disk template resource is missing
// or unreadable. Placeholders use the same {{name}} form as the resources.
var builtinTemplates = map[entity.MessageKind]string{
	entity.KindWelcome: `<html><body>
<p>Hello {{username}},</p>
<p>Your account was created on {{date}}. You can sign in at {{base_url}}.</p>
</body></html>`,
	entity.KindPasswordResetRequested: `<html><body>
<p>Hello {{username}},</p>
<p>A password reset was requested for this account on {{date}}.</p>
<p>Follow this link to choose a new password: {{base_url}}/reset-password?token={{reset_token}}</p>
<p>If you did not request a reset, you can ignore this message.</p>
</body></html>`,
	entity.KindPasswordChanged: `<html><body>
<p>Hello {{username}},</p>
<p>The password for your account was changed on {{date}}.</p>
<p>If this was not you, contact support immediately.</p>
</body></html>`,
	entity.KindRegistrationConfirmation: `<html><body>
<p>Hello {{username}},</p>
<p>Your registration on {{date}} has been received and is being processed.</p>
</body></html>`,
	entity.KindActivityNotice: `<html><body>
<p>Hello {{username}},</p>
<p>There was activity on your account on {{date}}: {{activity}}</p>
</body></html>`,
}
