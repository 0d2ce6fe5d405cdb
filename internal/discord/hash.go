package discord

import (
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/bwmarrin/discordgo"
)

// hashCommand returns a stable digest of the parts of a definition Discord
// stores, so unchanged commands are not re-created on every start.
func hashCommand(def *discordgo.ApplicationCommand) string {
	obj := map[string]any{
		"name":        def.Name,
		"description": def.Description,
		"type":        def.Type,
	}
	if def.DefaultMemberPermissions != nil {
		obj["default_member_permissions"] = *def.DefaultMemberPermissions
	}
	if len(def.Options) > 0 {
		obj["options"] = hashOptions(def.Options)
	}
	data, _ := json.Marshal(obj)
	return fmt.Sprintf("%x", sha1.Sum(data))
}

func hashOptions(opts []*discordgo.ApplicationCommandOption) []map[string]any {
	out := make([]map[string]any, 0, len(opts))
	for _, o := range opts {
		entry := map[string]any{
			"name":        o.Name,
			"description": o.Description,
			"type":        o.Type,
			"required":    o.Required,
			"max_length":  o.MaxLength,
		}
		if len(o.Choices) > 0 {
			choices := make([][2]any, len(o.Choices))
			for i, c := range o.Choices {
				choices[i] = [2]any{c.Name, c.Value}
			}
			entry["choices"] = choices
		}
		if len(o.Options) > 0 {
			entry["options"] = hashOptions(o.Options)
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i]["name"].(string) < out[j]["name"].(string)
	})
	return out
}
