package notifier

import (
	"fmt"
	"sync"

	"github.com/osteele/liquid"
)

// Template bodies are Liquid sources compiled once and cached. Missing
// variables render empty rather than failing a send.
var templateSources = map[Template]string{
	TemplateNewsletterWelcome: `<html>
<body style="font-family: Arial, sans-serif; color: #1a1a2e;">
  <h2>Welcome aboard, {{ name }}!</h2>
  <p>You're now subscribed to the NartaQ newsletter. Expect a short monthly
  digest on venture funding, founder stories, and what we're building to
  connect exceptional startups with the right investors.</p>
  <p>If this wasn't you, simply ignore this email and you won't hear from us again.</p>
  <p>— The NartaQ team</p>
</body>
</html>`,

	TemplateInvestorConfirmation: `<html>
<body style="font-family: Arial, sans-serif; color: #1a1a2e;">
  <h2>Thanks for applying, {{ name }}</h2>
  <p>We received your investor application for {{ company }}. Our team
  reviews every application by hand; you'll hear back from us within a few
  business days.</p>
  <p>In the meantime, feel free to reply to this email with anything you'd
  like us to know about your investment thesis.</p>
  <p>— The NartaQ investment team</p>
</body>
</html>`,

	TemplateCareerConfirmation: `<html>
<body style="font-family: Arial, sans-serif; color: #1a1a2e;">
  <h2>Thanks for applying, {{ name }}</h2>
  <p>We received your application for the {{ position }} role. We read every
  application and will get back to you as soon as we can.</p>
  <p>— The NartaQ team</p>
</body>
</html>`,

	TemplateTest: `<html>
<body style="font-family: Arial, sans-serif; color: #1a1a2e;">
  <h2>Test message</h2>
  <p>This is a test message from the NartaQ forms service.</p>
  <p>Mode: {{ mode }}</p>
</body>
</html>`,
}

// registry compiles Liquid templates lazily and caches them.
type registry struct {
	engine *liquid.Engine
	cache  sync.Map // map[Template]*liquid.Template
}

func newRegistry() *registry {
	return &registry{engine: liquid.NewEngine()}
}

func (r *registry) render(kind Template, data map[string]interface{}) (string, error) {
	if cached, ok := r.cache.Load(kind); ok {
		return cached.(*liquid.Template).RenderString(data)
	}

	src, ok := templateSources[kind]
	if !ok {
		return "", fmt.Errorf("no template source for %q", kind)
	}
	tpl, err := r.engine.ParseString(src)
	if err != nil {
		return "", fmt.Errorf("parse template %s: %w", kind, err)
	}
	r.cache.Store(kind, tpl)
	return tpl.RenderString(data)
}
