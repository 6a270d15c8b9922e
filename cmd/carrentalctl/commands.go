package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	userstore "github.com/dalemusser/carrental/internal/app/store/users"
	"github.com/dalemusser/carrental/internal/app/system/auth"
	"github.com/dalemusser/carrental/internal/app/system/indexes"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print the bcrypt hash of a password (reads stdin when no argument is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var pw string
			if len(args) == 1 {
				pw = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				pw = strings.TrimRight(line, "\r\n")
			}
			hash, err := userstore.HashPassword(pw)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func newIssueTokenCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "issue-token <user-id>",
		Short: "Issue an API bearer token for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := primitive.ObjectIDFromHex(args[0]); err != nil {
				return fmt.Errorf("user id must be a 24-character hex ObjectID")
			}
			svc, err := auth.NewTokenService(opts.jwtSecret, opts.jwtTTL)
			if err != nil {
				return err
			}
			tok, exp, err := svc.Issue(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			opts.logger().Info("token issued", zap.String("user_id", args[0]), zap.Time("expires", exp))
			return nil
		},
	}
}

func newCreateUserCmd(opts *rootOptions) *cobra.Command {
	var in userstore.NewUser

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a carOwner, business, or admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := opts.logger()
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.mongoURI))
			if err != nil {
				return fmt.Errorf("connect to MongoDB: %w", err)
			}
			defer func() { _ = client.Disconnect(context.Background()) }()

			db := client.Database(opts.mongoDB)
			if err := indexes.EnsureAll(ctx, db, log); err != nil {
				return err
			}

			u, err := userstore.New(db).Create(ctx, in)
			if errors.Is(err, userstore.ErrDuplicateEmail) {
				return fmt.Errorf("a user with email %q already exists", in.Email)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), u.ID.Hex())
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.FullName, "name", "", "full name")
	f.StringVar(&in.Email, "email", "", "email address")
	f.StringVar(&in.Role, "role", "carOwner", "carOwner, business, or admin")
	f.StringVar(&in.Password, "password", "", "initial password (8+ characters)")
	f.StringVar(&in.ImageURL, "image-url", "", "avatar URL")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newSetPasswordCmd(opts *rootOptions) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "set-password",
		Short: "Replace the password of an existing account",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.mongoURI))
			if err != nil {
				return fmt.Errorf("connect to MongoDB: %w", err)
			}
			defer func() { _ = client.Disconnect(context.Background()) }()

			id, err := setPassword(ctx, userstore.New(client.Database(opts.mongoDB)), email, password)
			if err != nil {
				return err
			}
			opts.logger().Info("password updated", zap.String("user_id", id.Hex()))
			fmt.Fprintln(cmd.OutOrStdout(), id.Hex())
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&email, "email", "", "email address of the account")
	f.StringVar(&password, "password", "", "new password (8+ characters)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

// setPassword looks the account up by email and stores a new hash.
func setPassword(ctx context.Context, users *userstore.Store, email, password string) (primitive.ObjectID, error) {
	u, err := users.GetByEmail(ctx, email)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return primitive.NilObjectID, fmt.Errorf("no user with email %q", email)
	}
	if err != nil {
		return primitive.NilObjectID, err
	}
	if err := users.SetPassword(ctx, u.ID, password); err != nil {
		return primitive.NilObjectID, err
	}
	return u.ID, nil
}
