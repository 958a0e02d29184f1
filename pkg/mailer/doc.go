// Package mailer renders markdown email templates and hands the result to a provider.
//
// Three pieces cooperate:
//
//   - Sender is implemented by providers (see the resend subpackage) and returns a Receipt.
//   - Renderer executes a markdown template with YAML frontmatter, converts it with
//     goldmark and wraps it in an HTML layout. Parsed files are cached.
//   - Mailer combines both and validates messages before delivery.
//
// # Templates
//
// A template is markdown with optional frontmatter:
//
//	---
//	Subject: Hello {{.Name}}
//	---
//	Hello {{.Name}},
//
//	[!button|Unsubscribe]({{.UnsubscribeURL}})
//
// The [!button|Label](URL) syntax renders a call-to-action link with class "btn".
//
// # Usage
//
//	renderer := mailer.NewRendererWithConfig(templates, mailer.RendererConfig{AllowHTML: true})
//	m := mailer.New(resend.New(cfg.Resend), renderer, cfg.Mailer)
//
//	receipt, err := m.Send(ctx, mailer.SendParams{
//		To:       "ann@example.com",
//		From:     "news@example.com",
//		Subject:  "Spring update",
//		Template: "message.md",
//		Data:     data,
//	})
//
// Provider failures are joined with ErrSendFailed; render failures with ErrRenderFailed.
package mailer
