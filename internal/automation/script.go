// Package automation processes spreadsheet records by driving a headless
// browser through a scripted sequence of steps.
//
// A script is a YAML file:
//
//	timeout: 30s
//	steps:
//	  - action: navigate
//	    url: https://portal.example.org/Account/Login
//	  - action: send_keys
//	    selector: 'input[name="id"]'
//	    value: '{{.usuario}}'
//	  - action: click
//	    selector: 'input[type="submit"]'
//	  - action: wait_visible
//	    selector: .welcome
//	  - action: click
//	    selector: 'button.accept'
//	    optional: true
//	recover:
//	  - action: navigate
//	    url: https://portal.example.org/Account/Logout
//
// Values and URLs are Go templates over the record's fields.
package automation

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"text/template"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultTimeout = 30 * time.Second

// Action names understood by the runner.
const (
	ActionNavigate       = "navigate"
	ActionWaitVisible    = "wait_visible"
	ActionClick          = "click"
	ActionSendKeys       = "send_keys"
	ActionSetValue       = "set_value"
	ActionSleep          = "sleep"
	ActionEval           = "eval"
	ActionScrollIntoView = "scroll_into_view"
)

var ErrInvalidScript = errors.New("invalid automation script")

// Step is one browser action.
type Step struct {
	Action   string        `yaml:"action"`
	Selector string        `yaml:"selector,omitempty"`
	URL      string        `yaml:"url,omitempty"`
	Value    string        `yaml:"value,omitempty"`
	Script   string        `yaml:"script,omitempty"`
	Duration time.Duration `yaml:"duration,omitempty"`
	// Optional steps log their failure and let the record continue.
	Optional bool `yaml:"optional,omitempty"`

	value *template.Template
	url   *template.Template
}

// Script is the parsed step file.
type Script struct {
	// Timeout bounds the processing of one record.
	Timeout time.Duration `yaml:"timeout"`
	Steps   []Step        `yaml:"steps"`
	// Recover runs after a record fails, e.g. to log out.
	Recover []Step `yaml:"recover"`
}

// LoadScript reads and validates a script file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return ParseScript(data)
}

// ParseScript parses and validates YAML script content.
func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScript, err)
	}
	if len(s.Steps) == 0 {
		return nil, fmt.Errorf("%w: no steps", ErrInvalidScript)
	}
	if s.Timeout <= 0 {
		s.Timeout = defaultTimeout
	}
	for i := range s.Steps {
		if err := s.Steps[i].compile(); err != nil {
			return nil, fmt.Errorf("%w: step %d: %v", ErrInvalidScript, i+1, err)
		}
	}
	for i := range s.Recover {
		if err := s.Recover[i].compile(); err != nil {
			return nil, fmt.Errorf("%w: recover step %d: %v", ErrInvalidScript, i+1, err)
		}
	}
	return &s, nil
}

func (s *Step) compile() error {
	switch s.Action {
	case ActionNavigate:
		if s.URL == "" {
			return errors.New("navigate needs url")
		}
	case ActionWaitVisible, ActionClick, ActionScrollIntoView, ActionSendKeys, ActionSetValue:
		if s.Selector == "" {
			return fmt.Errorf("%s needs selector", s.Action)
		}
	case ActionSleep:
		if s.Duration <= 0 {
			return errors.New("sleep needs a positive duration")
		}
	case ActionEval:
		if s.Script == "" {
			return errors.New("eval needs script")
		}
	default:
		return fmt.Errorf("unknown action %q", s.Action)
	}

	var err error
	if s.value, err = template.New("value").Option("missingkey=zero").Parse(s.Value); err != nil {
		return err
	}
	if s.url, err = template.New("url").Option("missingkey=zero").Parse(s.URL); err != nil {
		return err
	}
	return nil
}

// Expand renders the step's value and url against the record fields.
func (s *Step) Expand(fields map[string]string) (value, url string, err error) {
	if s.value == nil || s.url == nil {
		if err := s.compile(); err != nil {
			return "", "", err
		}
	}
	if value, err = render(s.value, fields); err != nil {
		return "", "", err
	}
	if url, err = render(s.url, fields); err != nil {
		return "", "", err
	}
	return value, url, nil
}

func render(t *template.Template, fields map[string]string) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, fields); err != nil {
		return "", err
	}
	return buf.String(), nil
}
