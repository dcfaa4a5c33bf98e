package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"hisab/internal/catalog"
	"hisab/internal/cli"
	"hisab/internal/core"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"cat"},
		Short:   "Manage the category catalog",
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(updateCategoryCmd())
	cmd.AddCommand(deleteCategoryCmd())
	return cmd
}

func listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := openApp(cmd, false)
			if err != nil {
				return err
			}
			defer app.Close()

			return writeCategories(cmd.OutOrStdout(), app.Ledger.Categories())
		},
	}
}

// categoryFlags holds the optional attributes of a category.
type categoryFlags struct {
	price string
	image string
}

func (f *categoryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.price, "price", "", "default unit price; empty for none")
	cmd.Flags().StringVar(&f.image, "image", "", "image reference")
}

func (f *categoryFlags) category(name string) (core.Category, error) {
	c := core.Category{Name: name, ImageURI: core.StringPtr(f.image)}
	p, err := core.ParsePrice(f.price)
	if err != nil {
		return core.Category{}, fmt.Errorf("invalid --price: %w", err)
	}
	c.DefaultPrice = p
	return c, nil
}

func addCategoryCmd() *cobra.Command {
	var f categoryFlags

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := f.category(args[0])
			if err != nil {
				return err
			}
			app, err := openApp(cmd, false)
			if err != nil {
				return err
			}
			defer app.Close()

			added, err := app.Ledger.AddCategory(cmd.Context(), c)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("✓ Created category %q", added.Name)))
			return nil
		},
	}

	f.register(cmd)
	return cmd
}

func updateCategoryCmd() *cobra.Command {
	var (
		f       categoryFlags
		newName string
	)

	cmd := &cobra.Command{
		Use:   "update <name>",
		Short: "Rename a category or change its price or image",
		Long: `Update a category. Flags not given keep their current value. Renaming does
not rewrite transactions that already reference the old name.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd, false)
			if err != nil {
				return err
			}
			defer app.Close()

			current, err := findCategory(app, args[0])
			if err != nil {
				return err
			}
			next := current
			if cmd.Flags().Changed("name") {
				next.Name = newName
			}
			if cmd.Flags().Changed("price") {
				p, err := core.ParsePrice(f.price)
				if err != nil {
					return fmt.Errorf("invalid --price: %w", err)
				}
				next.DefaultPrice = p
			}
			if cmd.Flags().Changed("image") {
				next.ImageURI = core.StringPtr(f.image)
			}

			updated, err := app.Ledger.UpdateCategory(cmd.Context(), current.Name, next)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("✓ Updated category %q", updated.Name)))
			return nil
		},
	}

	f.register(cmd)
	cmd.Flags().StringVar(&newName, "name", "", "new name")
	return cmd
}

func deleteCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <name>",
		Aliases: []string{"delete"},
		Short:   "Delete a category",
		Long:    `Delete a category. Transactions that reference it keep the name.`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd, false)
			if err != nil {
				return err
			}
			defer app.Close()

			if _, err := findCategory(app, args[0]); err != nil {
				return err
			}
			removed, err := app.Ledger.DeleteCategory(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("✓ Deleted category %q", removed.Name)))
			return nil
		},
	}
}

// findCategory looks a category up by name, hinting at the closest known
// name when there is no match.
func findCategory(app *cli.App, name string) (core.Category, error) {
	for _, c := range app.Ledger.Categories() {
		if core.NamesEqual(c.Name, name) {
			return c, nil
		}
	}
	err := fmt.Errorf("%w: %q", catalog.ErrNotFound, name)
	if hint, ok := app.Ledger.ClosestCategory(name); ok {
		return core.Category{}, errors.Join(err, fmt.Errorf("did you mean %q?", hint))
	}
	return core.Category{}, err
}
