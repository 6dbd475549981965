package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/stepup/cmd/app/commands"
	"github.com/allisson/stepup/internal/app"
	"github.com/allisson/stepup/internal/config"
)

func getPolicyCommands() []*cli.Command {
	formatFlag := func() *cli.StringFlag {
		return &cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Value:   "text",
			Usage:   "Output format: 'text' or 'json'",
		}
	}
	idFlag := func(usage string) *cli.StringFlag {
		return &cli.StringFlag{
			Name:     "id",
			Aliases:  []string{"i"},
			Required: true,
			Usage:    usage,
		}
	}

	return []*cli.Command{
		{
			Name:  "get-approval",
			Usage: "Show a tracked approval with its resolved status",
			Flags: []cli.Flag{idFlag("Approval ID"), formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				approvalUseCase, err := container.ApprovalUseCase()
				if err != nil {
					return err
				}

				return commands.RunGetApproval(
					ctx,
					approvalUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("id"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "list-approvals",
			Usage: "List tracked approvals with resolved statuses",
			Flags: []cli.Flag{formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				approvalUseCase, err := container.ApprovalUseCase()
				if err != nil {
					return err
				}

				return commands.RunListApprovals(
					ctx,
					approvalUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "decide-approval",
			Usage: "Record an approve or deny decision on a pending approval",
			Flags: []cli.Flag{
				idFlag("Approval ID"),
				&cli.StringFlag{
					Name:     "user-id",
					Aliases:  []string{"u"},
					Required: true,
					Usage:    "Deciding approver's user ID",
				},
				&cli.StringFlag{
					Name:     "value",
					Aliases:  []string{"v"},
					Required: true,
					Usage:    "Decision value: 'approve' or 'deny'",
				},
				&cli.StringFlag{
					Name:    "reason",
					Aliases: []string{"r"},
					Value:   "",
					Usage:   "Optional reason attached to the decision",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				approvalUseCase, err := container.ApprovalUseCase()
				if err != nil {
					return err
				}

				return commands.RunDecideApproval(
					ctx,
					approvalUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("id"),
					cmd.String("user-id"),
					cmd.String("value"),
					cmd.String("reason"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "watch-approval",
			Usage: "Poll an approval until it reaches a terminal status",
			Flags: []cli.Flag{idFlag("Approval ID"), formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				approvalUseCase, err := container.ApprovalUseCase()
				if err != nil {
					return err
				}

				return commands.RunWatchApproval(
					ctx,
					approvalUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("id"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "get-policy",
			Usage: "Show a policy",
			Flags: []cli.Flag{idFlag("Policy ID"), formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				policyUseCase, err := container.PolicyUseCase()
				if err != nil {
					return err
				}

				return commands.RunGetPolicy(
					ctx,
					policyUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("id"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "list-policies",
			Usage: "List the organization's policies",
			Flags: []cli.Flag{formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				policyUseCase, err := container.PolicyUseCase()
				if err != nil {
					return err
				}

				return commands.RunListPolicies(
					ctx,
					policyUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "archive-policy",
			Usage: "Archive a policy (pending approvals resolve under their snapshot)",
			Flags: []cli.Flag{idFlag("Policy ID"), formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				policyUseCase, err := container.PolicyUseCase()
				if err != nil {
					return err
				}

				return commands.RunArchivePolicy(
					ctx,
					policyUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("id"),
					cmd.String("format"),
				)
			},
		},
	}
}
