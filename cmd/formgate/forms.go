package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/artpar/formgate/adapters/clock"
	"github.com/artpar/formgate/adapters/idgen"
	"github.com/artpar/formgate/adapters/sqlite"
	"github.com/artpar/formgate/app"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var formsCmd = &cobra.Command{
	Use:   "forms",
	Short: "Manage custom forms",
	Long: `Manage custom forms.

A form is a named container with its own slug-addressed public
endpoint. Fields are placed onto forms through the admin API; only
active published forms are readable publicly.

Examples:
  formgate forms list
  formgate forms create --slug=contact-us --title="Contact Us" --published`,
}

var formsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all forms",
	RunE:  runFormsList,
}

var formsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a custom form",
	RunE:  runFormsCreate,
}

var (
	formSlug        string
	formTitle       string
	formDescription string
	formActive      bool
	formPublished   bool
)

func init() {
	rootCmd.AddCommand(formsCmd)

	formsCmd.AddCommand(formsListCmd)
	formsCmd.AddCommand(formsCreateCmd)

	formsCreateCmd.Flags().StringVar(&formSlug, "slug", "", "URL slug (required)")
	formsCreateCmd.Flags().StringVar(&formTitle, "title", "", "form title")
	formsCreateCmd.Flags().StringVar(&formDescription, "description", "", "form description")
	formsCreateCmd.Flags().BoolVar(&formActive, "active", true, "accept submissions")
	formsCreateCmd.Flags().BoolVar(&formPublished, "published", false, "publicly readable")
	formsCreateCmd.MarkFlagRequired("slug")
}

func openForms() (*app.FormService, *sqlite.DB, error) {
	db, err := openDatabase()
	if err != nil {
		return nil, nil, err
	}
	placements := sqlite.NewPlacementStore(db)
	profiles := sqlite.NewProfileStore(db)
	validator := app.NewValidatorService(placements, profiles, zerolog.Nop(), nil)
	svc := app.NewFormService(
		sqlite.NewFormStore(db),
		sqlite.NewSubmissionStore(db),
		profiles,
		validator,
		idgen.UUID{},
		clock.Real{},
		zerolog.Nop(),
		nil,
	)
	return svc, db, nil
}

func runFormsList(cmd *cobra.Command, args []string) error {
	forms, db, err := openForms()
	if err != nil {
		return err
	}
	defer db.Close()

	all, err := forms.List(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list forms: %w", err)
	}

	if len(all) == 0 {
		fmt.Println("No forms found.")
		fmt.Println()
		fmt.Println("Create one with: formgate forms create --slug=contact-us")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSLUG\tTITLE\tACTIVE\tPUBLISHED")
	fmt.Fprintln(w, "--\t----\t-----\t------\t---------")

	for _, f := range all {
		fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%v\n", f.ID, f.Slug, f.Title, f.IsActive, f.IsPublished)
	}

	w.Flush()
	return nil
}

func runFormsCreate(cmd *cobra.Command, args []string) error {
	forms, db, err := openForms()
	if err != nil {
		return err
	}
	defer db.Close()

	f, err := forms.Create(context.Background(), formSlug, formTitle, formDescription, formActive, formPublished)
	if err != nil {
		return fmt.Errorf("failed to create form: %w", err)
	}

	fmt.Printf("%s Created form: %s\n", checkMark, f.ID)
	fmt.Printf("   Slug:      %s\n", f.Slug)
	if f.Title != "" {
		fmt.Printf("   Title:     %s\n", f.Title)
	}
	fmt.Printf("   Active:    %v\n", f.IsActive)
	fmt.Printf("   Published: %v\n", f.IsPublished)
	fmt.Println()
	fmt.Printf("Public endpoint: /form/%s\n", f.Slug)

	return nil
}
