package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-brandmanual/internal/bootstrap"
	"github.com/goliatone/go-brandmanual/pkg/customization"
	"github.com/goliatone/go-brandmanual/pkg/formdata"
	"github.com/goliatone/go-brandmanual/pkg/prompt"
	"github.com/goliatone/go-brandmanual/pkg/workspace"
)

const welcome = "Bem-vindo ao gerador de Manual da Marca! Preencha as informações do hotel; os campos com * são obrigatórios."

func newFillCmd(c *cli) *cobra.Command {
	var (
		sections  []string
		choose    bool
		customize bool
	)
	cmd := &cobra.Command{
		Use:   "fill",
		Short: "Fill the form interactively",
		Args:  cobra.NoArgs,
		RunE: c.with(func(ctx context.Context, app *bootstrap.App, _ []string) error {
			ws := app.Workspace
			filler := prompt.NewFiller(c.driver)

			if !ws.HasVisited(ctx) {
				if err := c.driver.Info(ctx, welcome); err != nil {
					return err
				}
				if err := ws.MarkVisited(ctx); err != nil {
					return err
				}
			}

			changed, err := filler.Fill(ctx, ws.Form(), sections...)
			if err != nil {
				return err
			}
			if err := ws.Save(ctx); err != nil {
				return err
			}
			c.printf("%d campos atualizados\n", changed)

			if choose {
				t, err := filler.ChooseTemplate(ctx, ws.Templates(), ws.Template(ctx).ID)
				if err != nil {
					return err
				}
				if _, err := ws.SelectTemplate(ctx, t.ID); err != nil {
					return err
				}
				c.printf("Template selecionado: %s\n", t.Name)
			}
			if customize {
				if _, err := ws.UpdateCustomization(ctx, func(cust *customization.Customization) error {
					return filler.ChooseSections(ctx, cust)
				}); err != nil {
					return err
				}
			}
			for _, issue := range ws.Validate().Issues {
				c.warnf("Aviso: %s\n", issue.Message)
			}
			return nil
		}),
	}
	cmd.Flags().StringSliceVar(&sections, "section", nil, "only ask the fields of these form sections")
	cmd.Flags().BoolVar(&choose, "template", false, "choose the template afterwards")
	cmd.Flags().BoolVar(&customize, "customize", false, "choose the document sections afterwards")
	return cmd
}

// readImport loads a JSON or YAML document as JSON bytes.
func readImport(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", workspace.ErrInvalidImport, err)
		}
		return json.Marshal(doc)
	default:
		return raw, nil
	}
}

func newImportCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import form data or a customization config from JSON or YAML",
		Args:  cobra.ExactArgs(1),
		RunE: c.with(func(ctx context.Context, app *bootstrap.App, args []string) error {
			raw, err := readImport(args[0])
			if err != nil {
				return err
			}
			kind, err := app.Workspace.Import(ctx, raw)
			var importErr *workspace.ImportError
			if errors.As(err, &importErr) {
				for _, issue := range importErr.Issues {
					c.warnf("  %s %s\n", issue.Path, issue.Message)
				}
				return errors.New("Arquivo inválido! Verifique se é um arquivo JSON válido.")
			}
			if err != nil {
				return err
			}
			switch kind {
			case workspace.ImportCustomization:
				c.printf("Configurações importadas com sucesso!\n")
			default:
				c.printf("Dados importados com sucesso!\n")
			}
			return nil
		}),
	}
}

func newExportCmd(c *cli) *cobra.Command {
	var toStdout bool
	cmd := &cobra.Command{
		Use:       "export <html|pdf|json|csv|txt|config|copy>",
		Short:     "Export the manual, its data or its customization",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"html", "pdf", "json", "csv", "txt", "config", "copy"},
		RunE: c.with(func(ctx context.Context, app *bootstrap.App, args []string) error {
			ws := app.Workspace
			var (
				path string
				err  error
			)
			switch format := strings.ToLower(args[0]); format {
			case "html":
				path, err = ws.ExportHTML(ctx)
			case "pdf":
				path, err = ws.ExportPDF(ctx)
			case "copy":
				path, err = ws.Duplicate(ctx)
			case "config":
				raw, name, cerr := ws.ExportConfig()
				if cerr != nil {
					return cerr
				}
				if toStdout {
					_, err = c.stdout.Write(append(raw, '\n'))
					return err
				}
				path, err = ws.Sink().Download(ctx, string(raw), name)
			default:
				f, ferr := formdata.ParseFormat(format)
				if ferr != nil {
					return ferr
				}
				if toStdout {
					_, err = ws.ExportData(c.stdout, f)
					return err
				}
				path, err = ws.DownloadData(ctx, f)
			}
			if err != nil {
				return err
			}
			if path != "" {
				c.printf("Arquivo exportado: %s\n", path)
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "write data and config exports to stdout")
	return cmd
}

func newShareCmd(c *cli) *cobra.Command {
	var base string
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Print a share link for the current manual",
		Args:  cobra.NoArgs,
		RunE: c.with(func(ctx context.Context, app *bootstrap.App, _ []string) error {
			if base == "" {
				base = fmt.Sprintf("http://localhost:%d/", app.Config.Server.Port)
			}
			link, err := app.Workspace.ShareLink(ctx, base)
			if err != nil {
				return err
			}
			c.printf("%s\n", link)
			return nil
		}),
	}
	cmd.Flags().StringVar(&base, "base", "", "base URL of the link")

	cmd.AddCommand(&cobra.Command{
		Use:   "apply <link|token>",
		Short: "Apply a share link to the current manual",
		Args:  cobra.ExactArgs(1),
		RunE: c.with(func(ctx context.Context, app *bootstrap.App, args []string) error {
			p, err := app.Workspace.ApplyShare(ctx, args[0])
			if err != nil {
				return err
			}
			c.printf("Dados compartilhados aplicados: %s\n", p.HotelName)
			return nil
		}),
	})
	return cmd
}

// errInvalidForm makes validate --strict exit non-zero.
var errInvalidForm = errors.New("formulário incompleto")

func newValidateCmd(c *cli) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check required fields, e-mail, URL and colour formats",
		Args:  cobra.NoArgs,
		RunE: c.with(func(ctx context.Context, app *bootstrap.App, _ []string) error {
			result := app.Workspace.Validate()
			for _, issue := range result.Issues {
				c.printf("- %s\n", issue.Message)
			}
			c.printWarnings(ctx, app)
			if result.Valid {
				c.printf("Formulário válido\n")
				return nil
			}
			if strict {
				return errInvalidForm
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "exit with an error when the form is invalid")
	return cmd
}

func newClearCmd(c *cli) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Erase the form, customization and template choice",
		Args:  cobra.NoArgs,
		RunE: c.with(func(ctx context.Context, app *bootstrap.App, _ []string) error {
			if !yes {
				ok, err := prompt.NewFiller(c.driver).Confirm(ctx, "Tem certeza que deseja limpar todos os dados? Esta ação não pode ser desfeita.", false)
				if err != nil {
					return err
				}
				if !ok {
					c.printf("Operação cancelada\n")
					return nil
				}
			}
			if err := app.Workspace.ClearAll(ctx); err != nil {
				return err
			}
			c.printf("Todos os dados foram limpos\n")
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation")
	return cmd
}
