package cmd

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vibast-solutions/ms-go-academics/app/entity"
	"github.com/vibast-solutions/ms-go-academics/app/repository"
	"github.com/vibast-solutions/ms-go-academics/app/service"
	"github.com/vibast-solutions/ms-go-academics/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/spf13/cobra"
)

var mailTestKind string

var mailTestCmd = &cobra.Command{
	Use:   "mailtest <username-or-email>",
	Short: "Send a test notification to an account",
	Long:  `Send a notification of the chosen kind to an existing account to verify the SMTP configuration. The attempt is recorded in the delivery audit trail like any other send.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		db, err := sql.Open("mysql", cfg.DSN())
		if err != nil {
			return err
		}
		defer db.Close()

		accountRepo := repository.NewAccountRepository(db)
		deliveryRepo := repository.NewDeliveryRecordRepository(db)
		mailer := service.NewMailer(cfg, deliveryRepo)

		ctx := context.Background()
		account, err := accountRepo.FindByUsername(ctx, args[0])
		if err != nil {
			return err
		}
		if account == nil {
			account, err = accountRepo.FindByEmail(ctx, args[0])
			if err != nil {
				return err
			}
		}
		if account == nil {
			return fmt.Errorf("no account matches %q", args[0])
		}

		kind := entity.MessageKind(mailTestKind)
		valid := false
		for _, known := range entity.KnownKinds() {
			if kind == known {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("unknown message kind %q", mailTestKind)
		}

		ok := mailer.Send(ctx, account, kind, map[string]string{
			"activity": "mail configuration test",
		})

		fmt.Printf("account: %s <%s>\n", account.Username, account.Email)
		fmt.Printf("kind: %s\n", kind)
		fmt.Printf("delivered: %t\n", ok)
		return nil
	},
}

func init() {
	mailTestCmd.Flags().StringVar(&mailTestKind, "kind", string(entity.KindActivityNotice), "message kind to send")
	rootCmd.AddCommand(mailTestCmd)
}
