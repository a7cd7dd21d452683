package command_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guptam/altimeter/cmd/altimeter/internal/command"
	"github.com/guptam/altimeter/pkg/artifact"
	"github.com/guptam/altimeter/pkg/model"
)

const vpcDump = `{
  "account_id": "111122223333",
  "region": "us-east-1",
  "resources": [
    {"type": "aws:ec2:vpc", "data": {
      "VpcId": "vpc-1", "IsDefault": true, "CidrBlock": "172.31.0.0/16", "State": "available",
      "Tags": [{"Key": "Name", "Value": "main"}]}},
    {"type": "aws:ec2:subnet", "data": {
      "SubnetId": "subnet-1", "VpcId": "vpc-1", "CidrBlock": "172.31.0.0/20",
      "AvailabilityZone": "us-east-1a", "State": "available"}}
  ]
}`

func init() {
	color.NoColor = true
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cli := command.NewCLI(&out, &bytes.Buffer{})
	root := command.NewRootCommand(cli)
	command.AddCommands(root, cli)
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&out)
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestScanGraphCheck(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "dump.json", vpcDump)
	art := filepath.Join(dir, "artifact.json")

	out, err := run(t, "scan", "--artifact", art, "--graph-name", "test-graph", input)
	require.NoError(t, err)
	assert.Contains(t, out, "Resources: 2")

	a, err := artifact.Read(art)
	require.NoError(t, err)
	assert.Equal(t, "test-graph", a.Name)
	assert.Equal(t, "111122223333", a.AccountID)
	require.Len(t, a.Resources, 2)
	assert.Equal(t, "arn:aws:ec2:us-east-1:111122223333:vpc/vpc-1", a.Resources[0].ID)

	out, err = run(t, "graph", "--artifact", art, "--format", "lpg")
	require.NoError(t, err)
	var g model.Graph
	require.NoError(t, json.Unmarshal([]byte(out), &g))
	assert.Len(t, g.Vertices, 3)

	rdfOut := filepath.Join(dir, "graph.nt")
	_, err = run(t, "graph", "--artifact", art, "-f", "rdf", "-o", rdfOut, "--namespace", "test")
	require.NoError(t, err)
	nt, err := os.ReadFile(rdfOut)
	require.NoError(t, err)
	assert.Contains(t, string(nt), "172.31.0.0/16")
	assert.True(t, strings.Contains(string(nt), "test:"), "predicates under the namespace")

	out, err = run(t, "check", "--artifact", art)
	require.NoError(t, err)
	assert.Contains(t, out, "No dangling resource links")

	_, err = run(t, "check", "--artifact", art, "--strict")
	assert.ErrorIs(t, err, command.ErrCheckFailed)
}

func TestScan_SkipErrors(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "dump.json", `{
  "account_id": "111122223333",
  "region": "us-east-1",
  "resources": [
    {"type": "aws:ec2:subnet", "data": {"SubnetId": "subnet-1"}},
    {"type": "aws:ec2:unknown", "data": {}}
  ]
}`)
	art := filepath.Join(dir, "artifact.json")

	_, err := run(t, "scan", "--artifact", art, input)
	assert.Error(t, err)

	out, err := run(t, "scan", "--artifact", art, "--skip-errors", input)
	require.NoError(t, err)
	assert.Contains(t, out, "Scan errors: 2")

	a, err := artifact.Read(art)
	require.NoError(t, err)
	assert.Empty(t, a.Resources)
	assert.Len(t, a.Errors, 2)
}

func TestScan_CustomSchema(t *testing.T) {
	dir := t.TempDir()
	schemaFile := writeFile(t, dir, "widgets.yaml", `
resource_types:
  - name: acme:widget
    scope: global
    id: {key: WidgetId}
    fields:
      - {kind: scalar, key: Color}
`)
	input := writeFile(t, dir, "dump.json", `{"account_id": "1", "region": "r",
  "resources": [{"type": "acme:widget", "data": {"WidgetId": "w-1", "Color": "blue"}}]}`)
	art := filepath.Join(dir, "artifact.json")

	_, err := run(t, "scan", "--artifact", art, "--schema", schemaFile, input)
	require.NoError(t, err)

	out, err := run(t, "schemas", "--schema", schemaFile)
	require.NoError(t, err)
	assert.Contains(t, out, "acme:widget")
	assert.Contains(t, out, "aws:ec2:vpc")
}

func TestInvalidConfig(t *testing.T) {
	_, err := run(t, "graph", "--format", "csv")
	require.Error(t, err)

	_, err = run(t, "scan")
	assert.Error(t, err, "scan needs an input")

	_, err = run(t, "graph", "--artifact", filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, err != nil && !errors.Is(err, command.ErrCheckFailed))
}
