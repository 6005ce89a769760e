package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/davidbz/pressroom/internal/httpserver"
	"github.com/davidbz/pressroom/internal/interview"
	"github.com/davidbz/pressroom/internal/observability"
	"github.com/davidbz/pressroom/internal/preferences"
)

const shutdownTimeout = 10 * time.Second

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pressroom",
		Short: "Crisis press-interview rehearsal service",
		Long: `pressroom drafts adversarial reporter questions, runs simulated press
conferences and grades draft answers. Every model reply passes through a
normalize, validate and retry pipeline before it reaches the caller.`,
		SilenceUsage: true,
	}

	root.AddCommand(newServeCmd(), newQuestionsCmd(), newRiskCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			container, err := buildContainer()
			if err != nil {
				return err
			}

			return container.Invoke(func(server *httpserver.Server, store preferences.Store) error {
				defer store.Close()

				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				errCh := make(chan error, 1)
				go func() { errCh <- server.Start() }()

				select {
				case err := <-errCh:
					return err
				case <-ctx.Done():
				}

				observability.FromContext(ctx).Info("shutting down server")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return server.Shutdown(shutdownCtx)
			})
		},
	}
}

func newQuestionsCmd() *cobra.Command {
	var topic, background string

	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Generate reporter questions for a topic and print them as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(func(svc *interview.Service) error {
				set, err := svc.GenerateQuestions(cmd.Context(), interview.QuestionsRequest{
					Topic:   topic,
					Context: background,
				})
				if err != nil {
					return err
				}
				return printJSON(cmd, set)
			})
		},
	}

	cmd.Flags().StringVar(&topic, "topic", "", "interview topic")
	cmd.Flags().StringVar(&background, "context", "", "optional background, URL or notes")
	_ = cmd.MarkFlagRequired("topic")
	return cmd
}

func newRiskCmd() *cobra.Command {
	var question, answer string

	cmd := &cobra.Command{
		Use:   "risk",
		Short: "Grade the risks of a draft answer and print them as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(func(svc *interview.Service) error {
				risks, err := svc.AnalyzeRisk(cmd.Context(), interview.RiskRequest{
					Question:   question,
					UserAnswer: answer,
				})
				if err != nil {
					return err
				}
				return printJSON(cmd, risks)
			})
		},
	}

	cmd.Flags().StringVar(&question, "question", "", "reporter question")
	cmd.Flags().StringVar(&answer, "answer", "", "draft answer")
	_ = cmd.MarkFlagRequired("question")
	_ = cmd.MarkFlagRequired("answer")
	return cmd
}

func withService(fn func(svc *interview.Service) error) error {
	container, err := buildContainer()
	if err != nil {
		return err
	}

	var runErr error
	invokeErr := container.Invoke(func(svc *interview.Service, store preferences.Store) {
		defer store.Close()
		runErr = fn(svc)
	})
	return errors.Join(invokeErr, runErr)
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
