// Package warning defines the typed warnings produced by a check pass. The
// set of variants is closed; all variants expose the owning plugin name plus
// a plain-text short description and an HTML full description.
package warning

import (
	"fmt"
	"strings"

	"github.com/xxxsen/lootcheck/internal/masterlist"
)

// Kind identifies a warning variant.
type Kind string

const (
	KindMessage            Kind = "message"
	KindMissingRequirement Kind = "missing-requirement"
	KindIncompatibility    Kind = "incompatibility"
	KindFormIDOutOfRange   Kind = "formid-out-of-range"
	KindDirtyPlugin        Kind = "dirty-plugin"
)

// Warning is one reported problem for a plugin.
type Warning interface {
	Kind() Kind
	PluginName() string
	// ShortDescription is plain text.
	ShortDescription() string
	// FullDescription may contain HTML markup.
	FullDescription() string
}

type base struct {
	plugin string
	short  string
	full   string
}

func (b base) PluginName() string       { return b.plugin }
func (b base) ShortDescription() string { return b.short }
func (b base) FullDescription() string  { return b.full }

// applySubs substitutes positional placeholders in a message content with the
// message's substitution strings: indexed {0}, {1}, ... first, then bare {}
// in order.
func applySubs(content string, subs []string) string {
	for i, sub := range subs {
		indexed := fmt.Sprintf("{%d}", i)
		if strings.Contains(content, indexed) {
			content = strings.ReplaceAll(content, indexed, sub)
		} else {
			content = strings.Replace(content, "{}", sub, 1)
		}
	}
	return content
}

// MessageWarning is a warning from a plugin entry's message list.
type MessageWarning struct {
	base
	Type string
}

func NewMessageWarning(pluginName string, msg masterlist.Message) *MessageWarning {
	content := applySubs(msg.Content.Text(), msg.Subs)
	return &MessageWarning{
		base: base{
			plugin: pluginName,
			short:  fmt.Sprintf("%s: %s", pluginName, stripMarkdown(content)),
			full:   fmt.Sprintf("%s: %s", pluginName, markdownToHTML(content)),
		},
		Type: msg.Type,
	}
}

func (w *MessageWarning) Kind() Kind { return KindMessage }

// MissingRequirementWarning reports a required file that is not installed.
type MissingRequirementWarning struct {
	base
	FilePath string
}

func NewMissingRequirementWarning(pluginName string, ref masterlist.FileRef) *MissingRequirementWarning {
	content := fmt.Sprintf("%s requires '%s' to be installed, but it is missing.", pluginName, ref.DisplayName())
	if ref.Detail != "" {
		content += " " + ref.Detail
	}
	return &MissingRequirementWarning{
		base: base{
			plugin: pluginName,
			short:  stripMarkdown(content),
			full:   markdownToHTML(content),
		},
		FilePath: ref.Name,
	}
}

func (w *MissingRequirementWarning) Kind() Kind { return KindMissingRequirement }

// IncompatibilityWarning reports an incompatible file that is present
// alongside the plugin.
type IncompatibilityWarning struct {
	base
	FilePath string
}

func NewIncompatibilityWarning(pluginName string, ref masterlist.FileRef) *IncompatibilityWarning {
	content := fmt.Sprintf("%s is incompatible with '%s', but both are present.", pluginName, ref.DisplayName())
	if ref.Detail != "" {
		content += " " + ref.Detail
	}
	return &IncompatibilityWarning{
		base: base{
			plugin: pluginName,
			short:  stripMarkdown(content),
			full:   markdownToHTML(content),
		},
		FilePath: ref.Name,
	}
}

func (w *IncompatibilityWarning) Kind() Kind { return KindIncompatibility }

// FormIDOutOfRangeWarning reports a light plugin whose record identifiers do
// not fit the light-format range.
type FormIDOutOfRangeWarning struct {
	base
}

func NewFormIDOutOfRangeWarning(pluginName string) *FormIDOutOfRangeWarning {
	short := fmt.Sprintf(
		"%s contains records that have FormIDs outside the valid range for a light plugin. "+
			"Using this plugin will cause irreversible damage to your game saves.", pluginName)
	return &FormIDOutOfRangeWarning{
		base: base{
			plugin: pluginName,
			short:  short,
			full: short + "<br><br>If this plugin was uploaded in this state, " +
				"the error should be reported to the author.",
		},
	}
}

func (w *FormIDOutOfRangeWarning) Kind() Kind { return KindFormIDOutOfRange }

// DirtyPluginWarning reports a plugin whose checksum matches a known dirty
// state. RequiresManualFix governs whether a guided fix can be offered.
type DirtyPluginWarning struct {
	base
	RequiresManualFix bool
	ITM               *int
	UDR               *int
	NAV               *int
}

func NewDirtyPluginWarning(pluginName string, info masterlist.DirtyInfo) *DirtyPluginWarning {
	content := markdownToHTML(info.Detail)
	// Upstream wording for manual-fix cases starts with "It is strongly
	// recommended not to use mods that contain...". The prefix check is
	// fragile but matches the source of the detail texts; the presence of
	// deleted navmeshes alone does not imply a manual fix.
	requiresManualFix := strings.HasPrefix(content, "I")
	var short string
	if requiresManualFix {
		short = fmt.Sprintf("%s is dirty and contains deleted navmeshes", pluginName)
	} else {
		short = fmt.Sprintf("%s is dirty and requires cleaning.", pluginName)
	}
	var full string
	if requiresManualFix {
		full = short + "<br/><br/>" + content
	} else {
		full = short + ` Click the "Fix" button to clean it.<br/><br/>` + content
	}
	if countPresent(info.ITM) || countPresent(info.UDR) || countPresent(info.NAV) {
		full += "<br/><br/>Details:<ul>"
		if info.ITM != nil {
			full += fmt.Sprintf("<li>%d Identical To Master records (ITMs)</li>", *info.ITM)
		}
		if info.UDR != nil {
			full += fmt.Sprintf("<li>%d Undeleted and Disabled References (UDRs)</li>", *info.UDR)
		}
		if info.NAV != nil {
			full += fmt.Sprintf("<li>%d Deleted Navmeshes (NAVs)</li>", *info.NAV)
		}
		full += "</ul>"
	}
	return &DirtyPluginWarning{
		base: base{
			plugin: pluginName,
			short:  short,
			full:   full,
		},
		RequiresManualFix: requiresManualFix,
		ITM:               info.ITM,
		UDR:               info.UDR,
		NAV:               info.NAV,
	}
}

func countPresent(count *int) bool {
	return count != nil && *count != 0
}

func (w *DirtyPluginWarning) Kind() Kind { return KindDirtyPlugin }
