package cms

// Stat is a headline number with a label.
type Stat struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

// Card is an icon card used across marketing sections.
type Card struct {
	Icon  string   `yaml:"icon"`
	Title string   `yaml:"title"`
	Body  string   `yaml:"body"`
	Stats []string `yaml:"stats"`
	Badge string   `yaml:"badge"`
	Tone  string   `yaml:"tone"`
}

// CTA is a call-to-action block.
type CTA struct {
	Title     string `yaml:"title"`
	Body      string `yaml:"body"`
	Primary   Link   `yaml:"primary"`
	Secondary Link   `yaml:"secondary"`
	Note      string `yaml:"note"`
}

// Link is a labelled href.
type Link struct {
	Label string `yaml:"label"`
	Href  string `yaml:"href"`
}

// Home is the landing page copy.
type Home struct {
	Headline   string `yaml:"headline"`
	Lead       string `yaml:"lead"`
	Primary    Link   `yaml:"primary"`
	Secondary  Link   `yaml:"secondary"`
	Trust      []Stat `yaml:"trust"`
	Steps      []Card `yaml:"steps"`
	Benefits   []Card `yaml:"benefits"`
	Industries []Card `yaml:"industries"`
	CTA        CTA    `yaml:"cta"`
}

// Testimonial is a customer quote.
type Testimonial struct {
	Quote  string `yaml:"quote"`
	Name   string `yaml:"name"`
	Title  string `yaml:"title"`
	Avatar string `yaml:"avatar"`
}

// Plan is one pricing tier. PriceCents zero with a CustomLabel means quote-based.
type Plan struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	PriceCents  int64    `yaml:"price_cents"`
	Currency    string   `yaml:"currency"`
	Period      string   `yaml:"period"`
	CustomLabel string   `yaml:"custom_label"`
	Badge       string   `yaml:"badge"`
	Featured    bool     `yaml:"featured"`
	Features    []string `yaml:"features"`
	CTA         Link     `yaml:"cta"`
	Secondary   bool     `yaml:"secondary"`
}

// Pricing is the pricing page document.
type Pricing struct {
	Title string `yaml:"title"`
	Plans []Plan `yaml:"plans"`
}

// ComparisonRow is one aspect compared across products.
type ComparisonRow struct {
	Aspect string   `yaml:"aspect"`
	Values []string `yaml:"values"`
}

// Comparison is the competitive analysis table.
type Comparison struct {
	Title   string          `yaml:"title"`
	Columns []string        `yaml:"columns"`
	Rows    []ComparisonRow `yaml:"rows"`
}

// UseCases is the use-case page document.
type UseCases struct {
	Title string `yaml:"title"`
	Cases []Card `yaml:"cases"`
}

// Metric is a dashboard KPI.
type Metric struct {
	Icon   string `yaml:"icon"`
	Value  string `yaml:"value"`
	Label  string `yaml:"label"`
	Change string `yaml:"change"`
	Trend  string `yaml:"trend"`
}

// Activity is a feed entry.
type Activity struct {
	Icon    string `yaml:"icon"`
	Title   string `yaml:"title"`
	Time    string `yaml:"time"`
	Details string `yaml:"details"`
}

// Score is a model performance bar, Value in percent.
type Score struct {
	Label string `yaml:"label"`
	Value int    `yaml:"value"`
	Tone  string `yaml:"tone"`
}

// Analytics is the dashboard showcase document.
type Analytics struct {
	Title       string     `yaml:"title"`
	Metrics     []Metric   `yaml:"metrics"`
	Charts      []Card     `yaml:"charts"`
	Activity    []Activity `yaml:"activity"`
	Performance []Score    `yaml:"performance"`
}

// Chat is the chat page copy.
type Chat struct {
	Title       string `yaml:"title"`
	Lead        string `yaml:"lead"`
	Assistant   string `yaml:"assistant"`
	Status      string `yaml:"status"`
	Greeting    string `yaml:"greeting"`
	Placeholder string `yaml:"placeholder"`
	Suggestions []Link `yaml:"suggestions"`
	Features    []Card `yaml:"features"`
}

// Home returns the landing page copy.
func (c *Client) Home(lang string) (Home, error) { return loadYAML[Home](c, lang, "home.yaml") }

// Testimonials returns customer quotes in display order.
func (c *Client) Testimonials(lang string) ([]Testimonial, error) {
	return loadYAML[[]Testimonial](c, lang, "testimonials.yaml")
}

// Pricing returns the pricing tiers.
func (c *Client) Pricing(lang string) (Pricing, error) {
	return loadYAML[Pricing](c, lang, "pricing.yaml")
}

// Comparison returns the competitive analysis table.
func (c *Client) Comparison(lang string) (Comparison, error) {
	return loadYAML[Comparison](c, lang, "comparison.yaml")
}

// UseCases returns the use-case cards.
func (c *Client) UseCases(lang string) (UseCases, error) {
	return loadYAML[UseCases](c, lang, "usecases.yaml")
}

// Analytics returns the dashboard showcase.
func (c *Client) Analytics(lang string) (Analytics, error) {
	return loadYAML[Analytics](c, lang, "analytics.yaml")
}

// Chat returns the chat page copy.
func (c *Client) Chat(lang string) (Chat, error) { return loadYAML[Chat](c, lang, "chat.yaml") }
