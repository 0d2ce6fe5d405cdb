package core

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"

	"byteguard/internal/command"
	"byteguard/internal/config"
	"byteguard/pkg/cmd"
)

type HelpCommand struct{ base }

func (c *HelpCommand) Name() string        { return "help" }
func (c *HelpCommand) Description() string { return "Get a list of available commands" }
func (c *HelpCommand) Category() string    { return "🕯️ Information" }

func (c *HelpCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *HelpCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	ev, err := command.EventFrom(inv)
	if err != nil {
		return err
	}
	title := "Help"
	if c.deps.AppName != "" {
		title = c.deps.AppName + " Help"
	}
	return command.RespondEmbed(ctx, ev, &discordgo.MessageEmbed{
		Title:       title,
		Description: BuildHelp(c.deps.Registry),
	}, true)
}

// BuildHelp lists enabled commands grouped by category.
func BuildHelp(reg *cmd.Registry) string {
	byCategory := map[string][]cmd.Command{}
	for _, c := range reg.GetAll() {
		if !command.Enabled(c) {
			continue
		}
		cat := "Other"
		if meta, ok := command.Meta(c); ok && meta.Category() != "" {
			cat = meta.Category()
		}
		byCategory[cat] = append(byCategory[cat], c)
	}

	cats := make([]string, 0, len(byCategory))
	for cat := range byCategory {
		cats = append(cats, cat)
	}
	sort.Slice(cats, func(i, j int) bool {
		wi, wj := config.CategoryWeight(cats[i]), config.CategoryWeight(cats[j])
		if wi != wj {
			return wi < wj
		}
		return cats[i] < cats[j]
	})

	var sb strings.Builder
	for i, cat := range cats {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "**%s**\n", cat)
		for _, c := range byCategory[cat] {
			fmt.Fprintf(&sb, "`/%s` - %s\n", c.Name(), c.Description())
		}
	}
	return sb.String()
}
