// Package setup implements an interactive wizard that walks a user
// through building a named configuration profile: scan roots, routing
// rules, and scan options.
package setup

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/xuanyiying/filemover-cli/internal/config"
	"github.com/xuanyiying/filemover-cli/internal/types"
)

// RunWizard interactively builds a profile named profileName and saves
// it through mgr. If base is non-nil, its fields seed the prompts'
// defaults so the wizard can be used to clone/edit an existing profile.
func RunWizard(mgr *config.Manager, profileName string, base *config.Config) error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("===========================================")
	fmt.Printf("   Configuring profile %q\n", profileName)
	fmt.Println("===========================================")
	fmt.Println()

	cfg := config.DefaultConfig()
	if base != nil {
		cfg = *base
	}

	cfg.Roots = promptRoots(reader, cfg.Roots)
	cfg.Rules = promptRules(reader, cfg.Rules)
	cfg.Options = promptOptions(reader, cfg.Options)

	fmt.Println("\nConfiguration Summary:")
	fmt.Println("----------------------")
	fmt.Printf("Roots: %v\n", cfg.Roots)
	fmt.Printf("Rules: %d configured\n", len(cfg.Rules))
	fmt.Printf("Max depth: %v\n", cfg.Options.MaxDepth)
	fmt.Println("----------------------")

	confirm := prompt(reader, "Save this profile? (y/n)", "y")
	if strings.ToLower(confirm) != "y" {
		return fmt.Errorf("setup: cancelled by user")
	}

	if err := mgr.Save(profileName, cfg); err != nil {
		return fmt.Errorf("setup: save profile %q: %w", profileName, err)
	}

	fmt.Printf("\nProfile %q saved.\n\n", profileName)
	return nil
}

func promptRoots(reader *bufio.Reader, existing []string) []string {
	fmt.Println("--- Scan Roots ---")
	roots := append([]string(nil), existing...)
	for {
		if len(roots) > 0 {
			fmt.Printf("Current roots: %v\n", roots)
		}
		add := prompt(reader, "Add a scan root (blank to finish)", "")
		if add == "" {
			break
		}
		roots = append(roots, add)
	}
	return roots
}

func promptRules(reader *bufio.Reader, existing []types.Rule) []types.Rule {
	fmt.Println("\n--- Routing Rules ---")
	rules := append([]types.Rule(nil), existing...)
	for {
		more := prompt(reader, "Add a routing rule? (y/n)", "n")
		if strings.ToLower(more) != "y" {
			break
		}
		rules = append(rules, promptOneRule(reader))
	}
	return rules
}

func promptOneRule(reader *bufio.Reader) types.Rule {
	rule := types.NewRule()
	rule.ID = uuid.New()
	rule.Label = prompt(reader, "Rule label", "")

	kind := prompt(reader, "Pattern kind (glob/regex/contains)", "glob")
	for kind != "glob" && kind != "regex" && kind != "contains" {
		fmt.Println("Invalid pattern kind. Choose glob, regex, or contains.")
		kind = prompt(reader, "Pattern kind (glob/regex/contains)", "glob")
	}
	rule.Pattern.Kind = types.PatternKind(kind)
	rule.Pattern.Value = prompt(reader, "Pattern value", "*")
	rule.Pattern.CaseInsensitive = strings.ToLower(prompt(reader, "Case insensitive match? (y/n)", "y")) == "y"

	rule.DestRoot = prompt(reader, "Destination root", "")
	rule.Template = prompt(reader, "Destination name template", "{name}")

	policy := prompt(reader, "Conflict policy (auto_rename/skip/overwrite)", "auto_rename")
	for !isValidPolicy(policy) {
		fmt.Println("Invalid conflict policy.")
		policy = prompt(reader, "Conflict policy (auto_rename/skip/overwrite)", "auto_rename")
	}
	rule.Policy = types.ConflictPolicy(policy)

	priority := prompt(reader, "Priority (lower runs first)", "0")
	if v, err := strconv.ParseUint(priority, 10, 32); err == nil {
		rule.Priority = uint32(v)
	}

	rule.Enabled = true
	return rule
}

func promptOptions(reader *bufio.Reader, existing types.ScanOptions) types.ScanOptions {
	fmt.Println("\n--- Scan Options ---")
	opts := existing
	if opts.Normalization == (types.NormalizationOptions{}) {
		opts.Normalization = types.DefaultNormalizationOptions()
	}

	opts.FollowJunctions = strings.ToLower(prompt(reader, "Follow junctions/symlinks? (y/n)", boolPrompt(opts.FollowJunctions))) == "y"
	opts.SystemProtections = strings.ToLower(prompt(reader, "Enable system-path protections? (y/n)", boolPrompt(opts.SystemProtections))) == "y"

	depthStr := prompt(reader, "Max scan depth (blank for unlimited)", intPtrPrompt(opts.MaxDepth))
	if depthStr == "" {
		opts.MaxDepth = nil
	} else if v, err := strconv.Atoi(depthStr); err == nil {
		opts.MaxDepth = &v
	}

	return opts
}

func isValidPolicy(s string) bool {
	switch types.ConflictPolicy(s) {
	case types.PolicyAutoRename, types.PolicySkip, types.PolicyOverwrite:
		return true
	}
	return false
}

func boolPrompt(b bool) string {
	if b {
		return "y"
	}
	return "n"
}

func intPtrPrompt(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func prompt(reader *bufio.Reader, label string, defaultValue string) string {
	if defaultValue != "" {
		fmt.Printf("%s [%s]: ", label, defaultValue)
	} else {
		fmt.Printf("%s: ", label)
	}

	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultValue
	}
	return input
}
