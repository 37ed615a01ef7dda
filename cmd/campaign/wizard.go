package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/unclebandit/clinic-booking/internal/campaign"
	"github.com/unclebandit/clinic-booking/internal/model"
)

var errAborted = errors.New("campaign discarded")

// runWizard walks the composer through its three steps on a terminal. It
// returns after one successful send, or errAborted when the user quits.
func runWizard(ctx context.Context, c *campaign.Composer, in io.Reader, out io.Writer) error {
	p := &prompter{r: bufio.NewReader(in), w: out}

	for {
		var err error
		switch c.State().Step {
		case campaign.StepTemplateSelect:
			err = templateStep(c, p)
		case campaign.StepCustomize:
			err = customizeStep(c, p)
		case campaign.StepAudienceSelect:
			var done bool
			done, err = audienceStep(ctx, c, p)
			if done {
				return nil
			}
		}
		if err != nil {
			return err
		}
	}
}

func templateStep(c *campaign.Composer, p *prompter) error {
	fmt.Fprintln(p.w, "Choose a template:")
	for i, t := range campaign.Templates {
		fmt.Fprintf(p.w, "  %d) %s\n", i+1, t.Name)
	}
	fmt.Fprintln(p.w, "  0) start blank")

	for {
		answer, err := p.ask("template [0]", "q")
		if err != nil {
			return err
		}
		n, convErr := strconv.Atoi(answer)
		switch {
		case answer == "" || n == 0 && convErr == nil:
			return c.Apply(campaign.StartBlank{})
		case convErr == nil && n >= 1 && n <= len(campaign.Templates):
			return c.Apply(campaign.SelectTemplate{ID: campaign.Templates[n-1].ID})
		}
		if err := c.Apply(campaign.SelectTemplate{ID: answer}); err == nil {
			return nil
		}
		fmt.Fprintln(p.w, "pick a number from the list")
	}
}

func customizeStep(c *campaign.Composer, p *prompter) error {
	s := c.State()
	fmt.Fprintf(p.w, "\nTitle: %s\nMessage:\n%s\n\n", s.Title, s.Message)

	title, err := p.ask("new title (enter keeps, b goes back)", "q")
	if err != nil {
		return err
	}
	if title == "b" {
		return c.Apply(campaign.Back{})
	}
	message, err := p.ask(`new message, "\n" for line breaks (enter keeps)`, "q")
	if err != nil {
		return err
	}

	edit := campaign.Edit{Title: s.Title, Message: s.Message}
	if title != "" {
		edit.Title = title
	}
	if message != "" {
		edit.Message = strings.ReplaceAll(message, `\n`, "\n")
	}
	if err := c.Apply(edit); err != nil {
		return err
	}
	for _, w := range c.Warnings() {
		fmt.Fprintln(p.w, "⚠️", w)
	}
	return c.Apply(campaign.Next{})
}

// audienceStep returns done=true once the campaign has been sent.
func audienceStep(ctx context.Context, c *campaign.Composer, p *prompter) (bool, error) {
	answer, err := p.ask("audience: all, active, inactive, new [all] (b goes back)", "q")
	if err != nil {
		return false, err
	}
	switch answer {
	case "b":
		return false, c.Apply(campaign.Back{})
	case "":
		answer = string(model.AudienceAll)
	}
	if err := c.Apply(campaign.ChooseAudience{Audience: model.Audience(answer)}); err != nil {
		fmt.Fprintln(p.w, describe(err))
		return false, nil
	}
	fmt.Fprintf(p.w, "about %d patients in this audience\n", c.Estimate(ctx))

	answer, err = p.ask("recipients: enter for everybody, or how many to pick at random", "q")
	if err != nil {
		return false, err
	}
	sel := campaign.ChooseRecipients{Mode: campaign.ModeAll}
	if answer != "" {
		sel = campaign.ChooseRecipients{Mode: campaign.ModeLimited, Raw: answer}
	}
	if err := c.Apply(sel); err != nil {
		return false, err
	}

	answer, err = p.ask("send now? [y/N]", "q")
	if err != nil {
		return false, err
	}
	if !strings.EqualFold(answer, "y") {
		return false, nil
	}

	summary, err := c.Submit(ctx)
	if err != nil {
		// the composer kept everything, so the user can fix and resend
		fmt.Fprintln(p.w, "❌", describe(err))
		return false, nil
	}
	fmt.Fprintln(p.w, "🎉", summary.Message)
	return true, nil
}

type prompter struct {
	r *bufio.Reader
	w io.Writer
}

// ask prints label and reads one trimmed line. quit, or end of input,
// aborts the wizard.
func (p *prompter) ask(label, quit string) (string, error) {
	fmt.Fprintf(p.w, "%s: ", label)
	line, err := p.r.ReadString('\n')
	line = strings.TrimSpace(line)
	if err != nil && line == "" {
		if errors.Is(err, io.EOF) {
			return "", errAborted
		}
		return "", err
	}
	if line == quit {
		return "", errAborted
	}
	return line, nil
}
