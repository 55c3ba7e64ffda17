package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dealflow-backend/internal/report"
	"dealflow-backend/internal/score"
	"dealflow-backend/internal/summarize"
)

func main() {
	outDir := flag.String("out", "./out", "output directory for generated reports")
	flag.Parse()

	in := sampleEvaluation()

	markdownBytes, err := report.Render(in, report.FormatMarkdown)
	if err != nil {
		fmt.Fprintf(os.Stderr, "markdown render failed: %v\n", err)
		os.Exit(1)
	}
	pdfBytes, err := report.Render(in, report.FormatPDF)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pdf render failed: %v\n", err)
		os.Exit(1)
	}

	markdownPath := filepath.Join(*outDir, report.FileName(in.CompanyName, report.FormatMarkdown))
	pdfPath := filepath.Join(*outDir, report.FileName(in.CompanyName, report.FormatPDF))

	if err := writeOutputs(*outDir, in, markdownPath, markdownBytes, pdfPath, pdfBytes); err != nil {
		fmt.Fprintf(os.Stderr, "write failed: %v\n", err)
		os.Exit(1)
	}

	if err := validateMarkdown(markdownPath, in); err != nil {
		fmt.Fprintf(os.Stderr, "markdown validation failed: %v\n", err)
		os.Exit(1)
	}
	if err := validatePDF(pdfPath); err != nil {
		fmt.Fprintf(os.Stderr, "pdf validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("OK: wrote %s\n", markdownPath)
	fmt.Printf("OK: wrote %s\n", pdfPath)
}

func writeOutputs(outDir string, in report.Input, markdownPath string, markdownBytes []byte, pdfPath string, pdfBytes []byte) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	if err := os.WriteFile(markdownPath, markdownBytes, 0o644); err != nil {
		return err
	}
	if err := os.WriteFile(pdfPath, pdfBytes, 0o644); err != nil {
		return err
	}

	inputPath := filepath.Join(outDir, "sample_evaluation.json")
	payload, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(inputPath, payload, 0o644); err != nil {
		return err
	}

	return nil
}

func sampleEvaluation() report.Input {
	return report.Input{
		CompanyName:  "Acme Robotics",
		EvaluationID: "eval_demo_1",
		CreatedAt:    time.Date(2025, 6, 12, 9, 30, 0, 0, time.UTC),
		Scores: score.Scores{
			BusinessIdea: 74,
			Market:       61,
			BusinessPlan: 55,
			Team:         82,
			Financing:    38,
			PitchDeck:    67,
		},
		Mode: score.ModeAdjusted,
		Summary: "Acme Robotics pairs a proven robotics team with a focused wedge " +
			"into mid-size warehouse automation. Pilot traction is real but the " +
			"financing plan leans on letters of intent rather than committed revenue.",
		ApplicationSummary: summarize.Summary{
			Text: "The application describes pick-and-place arms for mid-size " +
				"warehouses, two completed pilot deployments, and a seed round " +
				"intended to fund initial manufacturing capacity.",
			Source: summarize.SourceModel,
		},
		PitchDeckSummary: summarize.Summary{
			Text: "The deck covers the team's prior exits, a bottoms-up market " +
				"sizing for warehouse automation, and a deployment roadmap " +
				"through three logistics partners.",
			Source: summarize.SourceModel,
		},
	}
}

func validateMarkdown(path string, in report.Input) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	text := string(data)

	if !strings.Contains(text, "# Evaluation Report: "+in.CompanyName) {
		return fmt.Errorf("missing report title for %s", in.CompanyName)
	}
	total := fmt.Sprintf("**%d / 600**", in.Scores.Total())
	if !strings.Contains(text, total) {
		return fmt.Errorf("missing total score line %s", total)
	}
	return nil
}

func validatePDF(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return fmt.Errorf("output does not start with a PDF header")
	}
	if len(data) < 1024 {
		return fmt.Errorf("pdf suspiciously small: %d bytes", len(data))
	}
	return nil
}
