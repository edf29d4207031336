package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/quickprintz/storefront/internal/config"
	"github.com/quickprintz/storefront/internal/models"
	"github.com/quickprintz/storefront/internal/repository"
	"github.com/quickprintz/storefront/internal/service"

	"github.com/spf13/cobra"
)

func openDatabase(cfg *config.Config) error {
	return models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
	})
}

func newContactsCommand() *cobra.Command {
	var filter repository.ContactListFilter
	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "查看联系表单提交记录",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			if err := openDatabase(cfg); err != nil {
				return err
			}
			items, total, err := repository.NewContactRepository(models.DB).List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCREATED\tSTATUS\tNAME\tEMAIL\tINTEREST")
			for _, item := range items {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
					item.ID,
					item.CreatedAt.Format("2006-01-02 15:04"),
					item.Status,
					item.Name,
					item.Email,
					item.Interest,
				)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d/%d submissions\n", len(items), total)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&filter.Status, "status", "", "状态: pending / forwarded / failed / skipped")
	flags.IntVar(&filter.Page, "page", 1, "页码")
	flags.IntVar(&filter.PageSize, "page-size", 20, "每页数量")
	return cmd
}

func newForwardCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "forward <id>",
		Short: "重新转发一条联系表单",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil || id == 0 {
				return fmt.Errorf("invalid submission id: %s", args[0])
			}
			cfg := loadConfig()
			if err := openDatabase(cfg); err != nil {
				return err
			}
			repo := repository.NewContactRepository(models.DB)
			contacts := service.NewContactService(repo, nil, nil, cfg.Contact)
			if err := contacts.Forward(cmd.Context(), uint(id)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "submission %d forwarded\n", id)
			return nil
		},
	}
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "执行数据库迁移",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			if err := openDatabase(cfg); err != nil {
				return err
			}
			if err := models.AutoMigrate(nil); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrated: cart_snapshots, contact_submissions")
			return nil
		},
	}
}
