package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"scenegen/internal/export"
	"scenegen/internal/pipeline"
	"scenegen/internal/types"
)

var (
	promptText string
	modelID    string
	outputDir  string
	scriptFile string
)

// generateCmd builds a scene from a fresh prompt
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a .glb scene from a text prompt",
	Example: `  scenegen generate --prompt "a red cube next to a blue sphere"
  scenegen generate -p "a small wooden table" --model gpt-4.1 --output-dir out`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

// refineCmd rewrites a previously generated script
var refineCmd = &cobra.Command{
	Use:     "refine",
	Short:   "Refine a previously generated scene script",
	Example: `  scenegen refine --script-file table.go.txt --prompt "make the legs taller"`,
	Args:    cobra.NoArgs,
	RunE:    runRefine,
}

func init() {
	generateCmd.Flags().StringVarP(&promptText, "prompt", "p", "", "Text prompt describing the 3D scene (required)")
	generateCmd.Flags().StringVar(&modelID, "model", "", "Model id (default: configured default model)")
	generateCmd.Flags().StringVar(&outputDir, "output-dir", "", "Output directory (default: export.output_dir)")
	generateCmd.MarkFlagRequired("prompt")

	refineCmd.Flags().StringVar(&scriptFile, "script-file", "", "File holding the script to refine (required)")
	refineCmd.Flags().StringVarP(&promptText, "prompt", "p", "", "Change to apply (required)")
	refineCmd.Flags().StringVar(&modelID, "model", "", "Model id (default: configured default model)")
	refineCmd.Flags().StringVar(&outputDir, "output-dir", "", "Output directory (default: export.output_dir)")
	refineCmd.MarkFlagRequired("script-file")
	refineCmd.MarkFlagRequired("prompt")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	return runPipeline(cmd, types.NewCreateRequest(promptText, modelID))
}

func runRefine(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(scriptFile)
	if err != nil {
		return fmt.Errorf("failed to read script file: %w", err)
	}
	return runPipeline(cmd, types.NewRefineRequest(string(data), promptText, modelID))
}

func runPipeline(cmd *cobra.Command, req types.GenerationRequest) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	dir := outputDir
	if dir == "" {
		dir = cfg.Export.OutputDir
	}

	logger.Info("Generating scene",
		zap.String("mode", string(req.Mode)),
		zap.String("model", req.ModelID),
		zap.String("output_dir", dir))

	p := buildPipeline(cfg, buildCatalog(cfg), nil)
	res, err := p.Run(ctx, req, func(env *types.Envelope) (string, error) {
		return export.CollisionFreePath(dir, env.Filename, ".glb"), nil
	})
	if err != nil {
		logger.Error("Scene generation failed",
			zap.String("stage", string(pipeline.StageOf(err))),
			zap.String("kind", string(pipeline.KindOf(err))),
			zap.Error(err))
		return err
	}

	printResult(cmd.OutOrStdout(), res)
	return nil
}

func printResult(w io.Writer, res *pipeline.Result) {
	fmt.Fprintln(w, successStyle.Render("✓ Scene written: ")+res.Artifact.Path)
	fmt.Fprintf(w, "%s %s (%d bytes)\n", labelStyle.Render("Format:"), res.Artifact.Format, res.Artifact.Size)
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Model: "), res.Model.ID)
	for _, warning := range res.Artifact.Warnings {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Note:  "), warning)
	}
	fmt.Fprintln(w, scriptStyle.Render(res.Envelope.Script))
}
