package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"prepaena_backend/internal/quiz"
	"prepaena_backend/internal/tui"
	"prepaena_backend/pkg/logger"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

func main() {
	subjects := flag.String("subject", "culture_generale", "comma separated subjects")
	level := flag.String("level", "CM", "exam level")
	count := flag.Int("count", 5, "questions per subject")
	date := flag.String("date", "", "daily quiz date (YYYY-MM-DD), today by default")
	timezone := flag.String("tz", "Africa/Abidjan", "exam time zone")
	budget := flag.Int("budget", quiz.DefaultTimeBudget, "time budget in seconds")
	noColor := flag.Bool("no-color", false, "disable colors")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	logger.InitConsole(*verbose)
	defer logger.Log.Sync()

	if err := run(*subjects, *level, *count, *date, *timezone, *budget, *noColor); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(subjects, level string, count int, date, timezone string, budget int, noColor bool) error {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return fmt.Errorf("load time zone: %w", err)
	}
	day := time.Now()
	if date != "" {
		day, err = time.ParseInLocation("2006-01-02", date, loc)
		if err != nil {
			return fmt.Errorf("parse date: %w", err)
		}
	}

	bank, err := quiz.DefaultBank()
	if err != nil {
		return err
	}
	source := quiz.NewSource(bank, loc)
	questions, err := source.Select(context.Background(), quiz.Request{
		Mode:      quiz.ModeDaily,
		Subjects:  strings.Split(subjects, ","),
		ExamLevel: level,
		Count:     count,
		Date:      day,
	})
	var short *quiz.InsufficientQuestionsError
	if errors.As(err, &short) {
		return fmt.Errorf("%w (subjects in bank: %s)", err, strings.Join(bank.Subjects(), ", "))
	}
	if err != nil {
		return err
	}

	session, err := quiz.NewSession(questions, budget)
	if err != nil {
		return err
	}
	logger.Log.Debug("Daily quiz selected",
		zap.String("date", source.DateKey(day)),
		zap.Int("questions", len(questions)),
	)

	final, err := tea.NewProgram(tui.NewModel(session, tui.Options{
		Title:   "PrepaENA • quiz du " + source.DateKey(day),
		NoColor: noColor,
	})).Run()
	if err != nil {
		return err
	}
	if m, ok := final.(tui.Model); ok {
		if score, done := m.Session().Score(); done {
			fmt.Printf("%d/%d (%d%%)\n", score.Correct, score.Total, score.Percentage)
		}
	}
	return nil
}
