package campaign

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"

	appErrors "github.com/unclebandit/clinic-booking/internal/errors"
	"github.com/unclebandit/clinic-booking/internal/model"
)

type Step int

const (
	StepTemplateSelect Step = iota
	StepCustomize
	StepAudienceSelect
)

func (s Step) String() string {
	switch s {
	case StepTemplateSelect:
		return "template-select"
	case StepCustomize:
		return "customize"
	case StepAudienceSelect:
		return "audience-select"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

var (
	ErrIllegalTransition = errors.New("event not allowed in this step")
	ErrUnknownTemplate   = errors.New("unknown template")
	ErrSubmitInFlight    = errors.New("a submission is already in progress")
	ErrNotReady          = errors.New("campaign can only be submitted from the audience step")
)

// State is everything the wizard holds between events.
type State struct {
	Step       Step
	TemplateID string
	Title      string
	Message    string
	Audience   model.Audience
	Mode       RecipientMode
	RawCount   string
}

func InitialState() State {
	return State{Step: StepTemplateSelect, Audience: model.AudienceAll, Mode: ModeAll}
}

// Event is one user action on the wizard.
type Event interface{ event() }

type (
	SelectTemplate   struct{ ID string }
	StartBlank       struct{}
	Next             struct{}
	Back             struct{}
	Edit             struct{ Title, Message string }
	ChooseAudience   struct{ Audience model.Audience }
	ChooseRecipients struct {
		Mode RecipientMode
		Raw  string
	}
)

func (SelectTemplate) event()   {}
func (StartBlank) event()       {}
func (Next) event()             {}
func (Back) event()             {}
func (Edit) event()             {}
func (ChooseAudience) event()   {}
func (ChooseRecipients) event() {}

// Transition is the only place steps change. It returns the input state and
// an error for anything the current step does not accept.
func Transition(s State, e Event) (State, error) {
	switch s.Step {
	case StepTemplateSelect:
		switch ev := e.(type) {
		case SelectTemplate:
			t, ok := TemplateByID(ev.ID)
			if !ok {
				return s, fmt.Errorf("%w: %s", ErrUnknownTemplate, ev.ID)
			}
			s.TemplateID, s.Title, s.Message = t.ID, t.Title, t.Message
			s.Step = StepCustomize
			return s, nil
		case StartBlank:
			s = InitialState()
			s.Step = StepCustomize
			return s, nil
		}

	case StepCustomize:
		switch ev := e.(type) {
		case Edit:
			s.Title, s.Message = ev.Title, ev.Message
			return s, nil
		case Next:
			s.Step = StepAudienceSelect
			return s, nil
		case Back:
			s.Step = StepTemplateSelect
			return s, nil
		}

	case StepAudienceSelect:
		switch ev := e.(type) {
		case ChooseAudience:
			if !ev.Audience.Valid() {
				return s, appErrors.NewValidation("target_audience", fmt.Sprintf("unknown audience %q", ev.Audience))
			}
			s.Audience = ev.Audience
			return s, nil
		case ChooseRecipients:
			s.Mode, s.RawCount = ev.Mode, ev.Raw
			return s, nil
		case Back:
			s.Step = StepCustomize
			return s, nil
		}
	}
	return s, fmt.Errorf("%w: %T in %s", ErrIllegalTransition, e, s.Step)
}

// Submitter sends a finished campaign under an idempotency key. *Dispatcher
// is the real one.
type Submitter interface {
	Submit(ctx context.Context, draft model.CampaignDraft, sel RecipientSelection, key string) (*model.SendSummary, error)
}

// Composer drives the wizard. It is safe for concurrent use; only one
// submission runs at a time.
type Composer struct {
	mu         sync.Mutex
	state      State
	submitting bool
	// key identifies the campaign being composed. It survives failed
	// submissions and is dropped when the content changes or a send succeeds.
	key string

	dispatcher Submitter
	estimator  Estimator
	onSuccess  func()
	newKey     func() string
}

func NewComposer(d Submitter, est Estimator, onSuccess func()) *Composer {
	if est == nil {
		est = PortalEstimates
	}
	return &Composer{
		state:      InitialState(),
		dispatcher: d,
		estimator:  est,
		onSuccess:  onSuccess,
		newKey:     uuid.NewString,
	}
}

func (c *Composer) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Apply feeds one event through Transition. Events are refused while a
// submission is running.
func (c *Composer) Apply(e Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitting {
		return ErrSubmitInFlight
	}
	next, err := Transition(c.state, e)
	if err != nil {
		return err
	}
	if contentChanged(c.state, next) {
		c.key = ""
	}
	c.state = next
	return nil
}

// Estimate is the display estimate for the selected audience.
func (c *Composer) Estimate(ctx context.Context) int {
	audience := c.State().Audience
	return c.estimator.Estimate(ctx, audience)
}

// Warnings lists soft problems that do not block submission.
func (c *Composer) Warnings() []string {
	s := c.State()
	var out []string
	if n := utf8.RuneCountInString(s.Message); n > model.MaxMessageLength {
		out = append(out, fmt.Sprintf("message is %d characters, more than the recommended %d", n, model.MaxMessageLength))
	}
	return out
}

// Submit validates locally, then dispatches. On success the wizard resets and
// onSuccess runs once; on failure the state is left as it was.
func (c *Composer) Submit(ctx context.Context) (*model.SendSummary, error) {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	s := c.state
	if s.Step != StepAudienceSelect {
		c.mu.Unlock()
		return nil, ErrNotReady
	}
	if strings.TrimSpace(s.Title) == "" || strings.TrimSpace(s.Message) == "" {
		c.mu.Unlock()
		return nil, appErrors.NewValidation("", "title and message are both required")
	}
	sel, err := ParseSelection(s.Mode, s.RawCount)
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	if c.key == "" {
		c.key = c.newKey()
	}
	key := c.key
	c.submitting = true
	c.mu.Unlock()

	draft := model.CampaignDraft{Title: s.Title, Message: s.Message, TargetAudience: s.Audience}
	summary, err := c.dispatcher.Submit(ctx, draft, sel, key)

	c.mu.Lock()
	c.submitting = false
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	c.state = InitialState()
	c.key = ""
	c.mu.Unlock()

	if c.onSuccess != nil {
		c.onSuccess()
	}
	return summary, nil
}

// contentChanged reports whether the campaign a submission would create
// differs between a and b. Moving between steps does not count.
func contentChanged(a, b State) bool {
	a.Step, b.Step = 0, 0
	return a != b
}
