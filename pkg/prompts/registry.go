// Package prompts implements a file-backed registry of reusable prompt
// templates, each stored as one JSON file under ~/.mcp/prompts and
// rendered into a protocol.GetPromptResult by simple {{variable}}
// substitution against the caller-supplied arguments.
package prompts

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/richard-senior/mcp/internal/logger"
	"github.com/richard-senior/mcp/pkg/protocol"
)

// storedPrompt is the on-disk shape: a Prompt plus the template text that
// GetPromptResult's single message is rendered from.
type storedPrompt struct {
	protocol.Prompt
	Template string `json:"template"`
}

// Registry manages the storage and retrieval of prompt templates.
type Registry struct {
	baseDir string
}

// NewRegistry opens (and seeds, if empty) the prompt registry under
// ~/.mcp/prompts.
func NewRegistry() *Registry {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		logger.Error("Failed to get user home directory", err)
		homeDir = "."
	}

	baseDir := filepath.Join(homeDir, ".mcp", "prompts")
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		logger.Error("Failed to create prompt registry directory", err)
	}

	r := &Registry{baseDir: baseDir}
	r.ensureSamplePrompts()
	return r
}

func (r *Registry) path(name string) (string, error) {
	if strings.Contains(name, "..") || strings.ContainsAny(name, "/\\") {
		return "", fmt.Errorf("invalid prompt name: %s", name)
	}
	return filepath.Join(r.baseDir, name+".json"), nil
}

func (r *Registry) load(name string) (*storedPrompt, error) {
	path, err := r.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("prompt not found: %s", name)
		}
		return nil, fmt.Errorf("failed to read prompt file: %w", err)
	}
	var sp storedPrompt
	if err := json.Unmarshal(data, &sp); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file: %w", err)
	}
	return &sp, nil
}

// List returns every prompt's metadata (spec's prompts/list), in no
// particular order.
func (r *Registry) List() ([]protocol.Prompt, error) {
	var out []protocol.Prompt
	err := filepath.WalkDir(r.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		name := strings.TrimSuffix(d.Name(), ".json")
		sp, err := r.load(name)
		if err != nil {
			logger.Warn("Failed to read prompt", name, err)
			return nil
		}
		out = append(out, sp.Prompt)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list prompts: %w", err)
	}
	return out, nil
}

// Get renders the named prompt against args (spec's prompts/get), filling
// any "required" argument missing from args with an error rather than
// leaving the literal "{{name}}" in the rendered text.
func (r *Registry) Get(name string, args map[string]string) (*protocol.GetPromptResult, error) {
	sp, err := r.load(name)
	if err != nil {
		return nil, err
	}
	for _, a := range sp.Arguments {
		if a.Required {
			if _, ok := args[a.Name]; !ok {
				return nil, fmt.Errorf("missing required argument: %s", a.Name)
			}
		}
	}

	text := sp.Template
	for k, v := range args {
		text = strings.ReplaceAll(text, "{{"+k+"}}", v)
	}

	return &protocol.GetPromptResult{
		Description: sp.Description,
		Messages: []protocol.PromptMessage{
			{Role: "user", Content: &protocol.TextContent{Text: text}},
		},
	}, nil
}

// Save writes prompt's metadata and template to disk, creating or
// overwriting its file.
func (r *Registry) Save(prompt protocol.Prompt, template string) error {
	if prompt.Name == "" {
		return fmt.Errorf("prompt name cannot be empty")
	}
	path, err := r.path(prompt.Name)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(storedPrompt{Prompt: prompt, Template: template}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal prompt: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func (r *Registry) Delete(name string) error {
	path, err := r.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("prompt not found: %s", name)
		}
		return fmt.Errorf("failed to delete prompt: %w", err)
	}
	return nil
}

// ensureSamplePrompts seeds the registry with a few ready-to-use templates
// the first time it's opened against an empty directory.
func (r *Registry) ensureSamplePrompts() {
	samples := []struct {
		prompt   protocol.Prompt
		template string
	}{
		{
			prompt: protocol.Prompt{
				Name:        "code-review",
				Title:       "Code Review",
				Description: "Review code for best practices, bugs, and improvements",
				Arguments: []protocol.PromptArgument{
					{Name: "language", Description: "Programming language of the code", Required: true},
					{Name: "code", Description: "The code to review", Required: true},
				},
			},
			template: "Please review the following {{language}} code for:\n" +
				"- Best practices\n- Potential bugs\n- Performance improvements\n- Security issues\n\n" +
				"Code:\n```{{language}}\n{{code}}\n```",
		},
		{
			prompt: protocol.Prompt{
				Name:        "explain-concept",
				Title:       "Explain Technical Concept",
				Description: "Explain a technical concept in simple terms",
				Arguments: []protocol.PromptArgument{
					{Name: "concept", Description: "The technical concept to explain", Required: true},
					{Name: "audience", Description: "Target audience (e.g. beginner, expert)", Required: false},
				},
			},
			template: "Please explain {{concept}} in simple terms that a {{audience}} would understand. Include:\n" +
				"- What it is\n- Why it's important\n- How it works\n- Real-world examples",
		},
		{
			prompt: protocol.Prompt{
				Name:        "aws-architecture",
				Title:       "AWS Architecture Review",
				Description: "Review and suggest improvements for AWS architecture",
				Arguments: []protocol.PromptArgument{
					{Name: "use_case", Description: "The use case or application type", Required: true},
					{Name: "architecture_description", Description: "Description of the current architecture", Required: true},
				},
			},
			template: "Please review this AWS architecture for {{use_case}}:\n\n{{architecture_description}}\n\n" +
				"Provide feedback on cost optimization, security, scalability, reliability and performance.",
		},
	}

	for _, s := range samples {
		if _, err := r.load(s.prompt.Name); err == nil {
			continue
		}
		if err := r.Save(s.prompt, s.template); err != nil {
			logger.Warn("Failed to create sample prompt", s.prompt.Name, err)
		} else {
			logger.Info("Created sample prompt", s.prompt.Name)
		}
	}
}
