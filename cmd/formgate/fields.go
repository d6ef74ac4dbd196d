package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/artpar/formgate/adapters/clock"
	"github.com/artpar/formgate/adapters/idgen"
	"github.com/artpar/formgate/adapters/sqlite"
	"github.com/artpar/formgate/app"
	"github.com/artpar/formgate/domain/field"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "Manage field definitions",
	Long: `Manage reusable field definitions.

A definition describes one field: its key, input type, validation
constraints, and whether validated values land in a profile column or
the attribute bag. Placing fields into scopes and forms is done
through the admin API.

Examples:
  formgate fields list
  formgate fields create --key=favorite_color --label="Favorite Color"
  formgate fields create --key=size --type=select --options=s,m,l
  formgate fields delete fld_123`,
}

var fieldsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all field definitions",
	RunE:  runFieldsList,
}

var fieldsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a field definition",
	RunE:  runFieldsCreate,
}

var fieldsDeleteCmd = &cobra.Command{
	Use:   "delete <field-id>",
	Short: "Delete a field definition",
	Args:  cobra.ExactArgs(1),
	RunE:  runFieldsDelete,
}

var (
	fieldKey       string
	fieldLabel     string
	fieldType      string
	fieldWriteTo   string
	fieldRegex     string
	fieldMinLength int
	fieldMaxLength int
	fieldOptions   []string
)

func init() {
	rootCmd.AddCommand(fieldsCmd)

	fieldsCmd.AddCommand(fieldsListCmd)
	fieldsCmd.AddCommand(fieldsCreateCmd)
	fieldsCmd.AddCommand(fieldsDeleteCmd)

	fieldsCreateCmd.Flags().StringVar(&fieldKey, "key", "", "field key (derived from label when empty)")
	fieldsCreateCmd.Flags().StringVar(&fieldLabel, "label", "", "display label")
	fieldsCreateCmd.Flags().StringVar(&fieldType, "type", "", "input type (text, password, email, number, date, textarea, checkbox, select)")
	fieldsCreateCmd.Flags().StringVar(&fieldWriteTo, "write-to", "", "storage destination (core or attributes)")
	fieldsCreateCmd.Flags().StringVar(&fieldRegex, "regex", "", "validation regular expression")
	fieldsCreateCmd.Flags().IntVar(&fieldMinLength, "min-length", 0, "minimum value length")
	fieldsCreateCmd.Flags().IntVar(&fieldMaxLength, "max-length", 0, "maximum value length")
	fieldsCreateCmd.Flags().StringSliceVar(&fieldOptions, "options", nil, "allowed values for select fields")
}

func openCatalog() (*app.CatalogService, *sqlite.DB, error) {
	db, err := openDatabase()
	if err != nil {
		return nil, nil, err
	}
	svc := app.NewCatalogService(
		sqlite.NewFieldStore(db),
		sqlite.NewPlacementStore(db),
		idgen.UUID{},
		clock.Real{},
		zerolog.Nop(),
	)
	return svc, db, nil
}

func runFieldsList(cmd *cobra.Command, args []string) error {
	catalog, db, err := openCatalog()
	if err != nil {
		return err
	}
	defer db.Close()

	defs, err := catalog.List(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list fields: %w", err)
	}

	if len(defs) == 0 {
		fmt.Println("No field definitions found.")
		fmt.Println()
		fmt.Println("Create one with: formgate fields create --key=favorite_color")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKEY\tLABEL\tTYPE\tWRITE TO\tSYSTEM")
	fmt.Fprintln(w, "--\t---\t-----\t----\t--------\t------")

	for _, d := range defs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%v\n", d.ID, d.Key, d.Label, d.Type, d.WriteTo, d.System)
	}

	w.Flush()
	return nil
}

func runFieldsCreate(cmd *cobra.Command, args []string) error {
	catalog, db, err := openCatalog()
	if err != nil {
		return err
	}
	defer db.Close()

	var base field.Patch
	if cmd.Flags().Changed("label") {
		base.Label = &fieldLabel
	}
	if cmd.Flags().Changed("type") {
		t := field.Type(fieldType)
		base.Type = &t
	}
	if cmd.Flags().Changed("write-to") {
		w := field.WriteTo(fieldWriteTo)
		base.WriteTo = &w
	}
	if cmd.Flags().Changed("regex") {
		base.ValidationRegex = &fieldRegex
	}
	if cmd.Flags().Changed("min-length") {
		base.MinLength = &fieldMinLength
	}
	if cmd.Flags().Changed("max-length") {
		base.MaxLength = &fieldMaxLength
	}
	if cmd.Flags().Changed("options") {
		base.Options = &fieldOptions
	}

	def, err := catalog.ResolveOrCreate(context.Background(), fieldKey, base)
	if err != nil {
		return fmt.Errorf("failed to create field: %w", err)
	}

	fmt.Printf("%s Created field: %s\n", checkMark, def.ID)
	fmt.Printf("   Key:   %s\n", def.Key)
	fmt.Printf("   Label: %s\n", def.Label)
	fmt.Printf("   Type:  %s\n", def.Type)
	if len(def.Options) > 0 {
		fmt.Printf("   Options: %s\n", strings.Join(def.Options, ", "))
	}
	fmt.Println()
	fmt.Println("Place it into a scope via: PUT /admin/scopes/{scope}/placements")

	return nil
}

func runFieldsDelete(cmd *cobra.Command, args []string) error {
	fieldID := args[0]

	catalog, db, err := openCatalog()
	if err != nil {
		return err
	}
	defer db.Close()

	def, err := catalog.Get(context.Background(), fieldID)
	if err != nil {
		return fmt.Errorf("field not found: %s", fieldID)
	}

	if !confirm(fmt.Sprintf("Delete field %s (%s)?", def.Key, fieldID)) {
		fmt.Println("Aborted.")
		return nil
	}

	if err := catalog.Delete(context.Background(), fieldID); err != nil {
		return fmt.Errorf("failed to delete field: %w", err)
	}

	fmt.Printf("%s Deleted field: %s\n", checkMark, def.Key)
	return nil
}
