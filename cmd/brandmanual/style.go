package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-brandmanual/internal/bootstrap"
	"github.com/goliatone/go-brandmanual/pkg/customization"
	"github.com/goliatone/go-brandmanual/pkg/prompt"
)

func newPresetsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List the customization presets",
		Args:  cobra.NoArgs,
		RunE: c.with(func(_ context.Context, app *bootstrap.App, _ []string) error {
			for _, name := range app.Workspace.Presets().Names() {
				c.printf("%s\n", name)
			}
			return nil
		}),
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "apply <name>",
		Short: "Apply a preset to the customization",
		Args:  cobra.ExactArgs(1),
		RunE: c.with(func(ctx context.Context, app *bootstrap.App, args []string) error {
			cust, err := app.Workspace.ApplyPreset(ctx, args[0])
			if err != nil {
				return err
			}
			c.printf("Preset %s aplicado: %s %s %s\n", args[0], cust.Colors.Primary, cust.Colors.Secondary, cust.Colors.Accent)
			return nil
		}),
	})
	return cmd
}

func newTemplatesCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List the document templates",
		Args:  cobra.NoArgs,
		RunE: c.with(func(ctx context.Context, app *bootstrap.App, _ []string) error {
			selected := app.Workspace.Template(ctx).ID
			for _, t := range app.Workspace.Templates() {
				marker := " "
				if t.ID == selected {
					marker = "*"
				}
				c.printf("%s %-14s %s\n", marker, t.ID, t.Description)
			}
			return nil
		}),
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "select <id>",
		Short: "Select the document template",
		Args:  cobra.ExactArgs(1),
		RunE: c.with(func(ctx context.Context, app *bootstrap.App, args []string) error {
			t, err := app.Workspace.SelectTemplate(ctx, args[0])
			if err != nil {
				return err
			}
			c.printf("Template selecionado: %s\n", t.Name)
			c.printWarnings(ctx, app)
			return nil
		}),
	})
	return cmd
}

type sectionFlags struct {
	enable, disable, reset bool
	title, icon, css       string
	background, titleColor string
}

func (f sectionFlags) apply(cmd *cobra.Command, cust *customization.Customization, id string) error {
	if f.reset {
		if err := cust.ResetSection(id); err != nil {
			return err
		}
	}
	if f.enable || f.disable {
		if err := cust.ToggleSection(id, f.enable); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("title") {
		if err := cust.SetSectionTitle(id, f.title); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("icon") {
		if err := cust.SetSectionIcon(id, f.icon); err != nil {
			return err
		}
	}
	if f.background != "" || f.titleColor != "" {
		if err := cust.SetSectionColor(id, f.background, f.titleColor); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("css") {
		return cust.SetSectionCSS(id, f.css)
	}
	return nil
}

func newCustomizeCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "customize",
		Short: "Inspect and change the document customization",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the customization as JSON",
		Args:  cobra.NoArgs,
		RunE: c.with(func(_ context.Context, app *bootstrap.App, _ []string) error {
			enc := json.NewEncoder(c.stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(app.Workspace.Customization())
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "sections",
		Short: "Choose the document sections interactively",
		Args:  cobra.NoArgs,
		RunE: c.with(func(ctx context.Context, app *bootstrap.App, _ []string) error {
			filler := prompt.NewFiller(c.driver)
			cust, err := app.Workspace.UpdateCustomization(ctx, func(cust *customization.Customization) error {
				return filler.ChooseSections(ctx, cust)
			})
			if err != nil {
				return err
			}
			var enabled []string
			for _, id := range customization.SectionIDs() {
				if cust.SectionEnabled(id) {
					enabled = append(enabled, id)
				}
			}
			c.printf("Seções ativas: %s\n", strings.Join(enabled, ", "))
			return nil
		}),
	})

	var flags sectionFlags
	section := &cobra.Command{
		Use:       "section <id>",
		Short:     "Change one section",
		Args:      cobra.ExactArgs(1),
		ValidArgs: customization.SectionIDs(),
	}
	section.RunE = c.with(func(ctx context.Context, app *bootstrap.App, args []string) error {
		id := args[0]
		if flags.enable && flags.disable {
			return fmt.Errorf("--enable and --disable are mutually exclusive")
		}
		cust, err := app.Workspace.UpdateCustomization(ctx, func(cust *customization.Customization) error {
			return flags.apply(section, cust, id)
		})
		if err != nil {
			return err
		}
		s := cust.Section(id)
		c.printf("%s: enabled=%t title=%q background=%s\n", id, s.Enabled, s.CustomTitle, s.BackgroundColor)
		return nil
	})
	section.Flags().BoolVar(&flags.enable, "enable", false, "show the section")
	section.Flags().BoolVar(&flags.disable, "disable", false, "hide the section")
	section.Flags().BoolVar(&flags.reset, "reset", false, "restore the section defaults first")
	section.Flags().StringVar(&flags.title, "title", "", "custom heading, empty restores the default")
	section.Flags().StringVar(&flags.icon, "icon", "", "heading icon, a glyph or inline SVG")
	section.Flags().StringVar(&flags.background, "bg", "", "background colour (#RRGGBB)")
	section.Flags().StringVar(&flags.titleColor, "title-color", "", "heading colour (#RRGGBB)")
	section.Flags().StringVar(&flags.css, "css", "", "extra CSS declarations")
	cmd.AddCommand(section)

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Restore the factory customization",
		Args:  cobra.NoArgs,
		RunE: c.with(func(ctx context.Context, app *bootstrap.App, _ []string) error {
			if err := app.Workspace.ResetCustomization(ctx); err != nil {
				return err
			}
			c.printf("Personalização restaurada\n")
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:       "panel [on|off]",
		Short:     "Show or set the customization panel visibility",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: c.with(func(ctx context.Context, app *bootstrap.App, args []string) error {
			ws := app.Workspace
			if len(args) == 1 {
				switch args[0] {
				case "on", "off":
					if err := ws.SetPanelVisible(ctx, args[0] == "on"); err != nil {
						return err
					}
				default:
					return fmt.Errorf("expected on or off, got %q", args[0])
				}
			}
			state := "off"
			if ws.PanelVisible(ctx) {
				state = "on"
			}
			c.printf("panel %s\n", state)
			return nil
		}),
	})
	return cmd
}
