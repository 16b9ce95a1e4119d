package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"scenegen/internal/config"
	"scenegen/internal/perception"
	"scenegen/internal/pipeline"
	"scenegen/internal/types"
)

type cannedClient struct {
	reply string
	last  perception.Request
}

func (c *cannedClient) Complete(_ context.Context, req perception.Request) (string, error) {
	c.last = req
	return c.reply, nil
}

const tableReply = `{"script": "scene := three.NewScene()\ntop := three.NewMesh(three.NewBoxGeometry(2, 0.1, 1), three.NewMeshLambertMaterial(0x8b4513))\ntop.Name = \"table_top\"\ntop.Position.Y = 1\nscene.Add(top)\nscene.Add(three.NewDirectionalLight(0xffffff, 1))\nreturn scene", "filename": "Wooden Table"}`

// setup resets the command globals and installs a canned provider reply.
func setup(t *testing.T, reply string) (*cannedClient, string) {
	t.Helper()
	logger = zap.NewNop()
	cfg = config.DefaultConfig()
	dir := t.TempDir()
	cfg.Export.OutputDir = dir

	client := &cannedClient{reply: reply}
	orig := newClient
	newClient = func(*perception.Catalog, config.LLMConfig) perception.Client { return client }
	t.Cleanup(func() {
		newClient = orig
		promptText, modelID, outputDir, scriptFile = "", "", "", ""
	})
	return client, dir
}

func newTestCmd() (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	return cmd, &out
}

func TestGenerateWritesCollisionFreeFiles(t *testing.T) {
	client, dir := setup(t, tableReply)
	promptText = "a small wooden table"

	cmd, out := newTestCmd()
	require.NoError(t, runGenerate(cmd, nil))
	assert.FileExists(t, filepath.Join(dir, "wooden_table.glb"))
	assert.Contains(t, out.String(), filepath.Join(dir, "wooden_table.glb"))
	assert.Contains(t, out.String(), `top.Name = "table_top"`)
	assert.Equal(t, "a small wooden table", client.last.UserContent)
	assert.Equal(t, perception.DefaultModelID, client.last.Model)

	cmd, _ = newTestCmd()
	require.NoError(t, runGenerate(cmd, nil))
	assert.FileExists(t, filepath.Join(dir, "wooden_table-1.glb"))
}

func TestGenerateOutputDirFlag(t *testing.T) {
	setup(t, tableReply)
	promptText = "a table"
	outputDir = filepath.Join(t.TempDir(), "nested", "out")
	modelID = "gemini-2.5-flash"

	cmd, out := newTestCmd()
	require.NoError(t, runGenerate(cmd, nil))
	assert.FileExists(t, filepath.Join(outputDir, "wooden_table.glb"))
	assert.Contains(t, out.String(), "gemini-2.5-flash")
}

func TestGenerateFailureLeavesNoFile(t *testing.T) {
	_, dir := setup(t, `{"script": "return map[string]int{}", "filename": "broken"}`)
	promptText = "anything"

	cmd, out := newTestCmd()
	err := runGenerate(cmd, nil)
	require.Error(t, err)
	assert.Equal(t, 1, pipeline.ExitCode(err))
	assert.Equal(t, types.KindScriptContract, pipeline.KindOf(err))
	assert.Empty(t, out.String())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRefineReadsScriptFile(t *testing.T) {
	client, dir := setup(t, tableReply)
	prior := "scene := three.NewScene()\nreturn scene"
	scriptFile = filepath.Join(t.TempDir(), "prior.txt")
	require.NoError(t, os.WriteFile(scriptFile, []byte(prior), 0644))
	promptText = "add a table"

	cmd, _ := newTestCmd()
	require.NoError(t, runRefine(cmd, nil))
	assert.Contains(t, client.last.UserContent, prior)
	assert.Contains(t, client.last.UserContent, "add a table")
	assert.FileExists(t, filepath.Join(dir, "wooden_table.glb"))
}

func TestRefineMissingScriptFile(t *testing.T) {
	setup(t, tableReply)
	scriptFile = filepath.Join(t.TempDir(), "missing.txt")
	promptText = "bigger"

	cmd, _ := newTestCmd()
	assert.Error(t, runRefine(cmd, nil))
}

func TestModelsMarksDefaultAndMissingKeys(t *testing.T) {
	setup(t, tableReply)
	newClient = func(c *perception.Catalog, llm config.LLMConfig) perception.Client {
		return perception.NewRouterFromConfig(c, llm)
	}
	cfg.LLM.OpenAI.APIKey = "sk-test"

	cmd, out := newTestCmd()
	require.NoError(t, runModels(cmd, nil))
	assert.Contains(t, out.String(), "* "+perception.DefaultModelID)
	assert.Contains(t, out.String(), "no anthropic key")
	assert.NotContains(t, out.String(), "no openai key")
}

func TestBuildCatalogDefault(t *testing.T) {
	setup(t, tableReply)
	cfg.LLM.DefaultModel = "gpt-4.1"
	assert.Equal(t, "gpt-4.1", buildCatalog(cfg).Default().ID)

	cfg.LLM.DefaultModel = "not-a-model"
	assert.Equal(t, perception.DefaultModelID, buildCatalog(cfg).Default().ID)
}

func TestBuildLogger(t *testing.T) {
	l, err := buildLogger(config.LoggingConfig{Level: "warn", Format: "console"}, false)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zap.InfoLevel))

	l, err = buildLogger(config.LoggingConfig{Level: "warn", Format: "json"}, true)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zap.DebugLevel))

	_, err = buildLogger(config.LoggingConfig{Level: "loud"}, false)
	assert.Error(t, err)
}
