// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
)

// Catalog entries. Zero means "no entry".
const (
	NoModulesResolvedId Id = iota + 1
	InvalidVersionId
	CommandNotFoundId
	MissingInputId
	ConfigLoadFailedId
	ArtifactoryAuthFailedId
	ManifestInvalidId
	StepFailedId
)

const docsBase = "https://github.com/deckbuilder/deckbuilder/blob/main/README.md"

type (
	// Id identifies a catalog entry.
	Id int

	// MarkdownMsg is the raw guidance text of an entry.
	MarkdownMsg string

	// HttpLink is an absolute URL.
	HttpLink string

	// Issue is longer-form guidance for a class of failure.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
		extLinks []HttpLink
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the entry, with a "See also" list of its links, as
// terminal markdown in the given glamour style ("dark", "light", "notty", ...).
func (i *Issue) Render(stylePath string) (string, error) {
	var sb strings.Builder
	sb.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		sb.WriteString("\n\n## See also\n")
		for _, link := range slices.Concat(i.docLinks, i.extLinks) {
			sb.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(sb.String(), stylePath)
}

var (
	render = glamour.Render

	noModulesResolvedIssue = &Issue{
		id: NoModulesResolvedId,
		mdMsg: `
# No modules to publish!

Module resolution found no directory with a ` + "`package.json`" + ` under the
module roots, so nothing would be published.

## Things you can try:
- Check that ` + "`--deck-path`" + ` points at the repository root
- List what the resolver sees:
~~~
$ deckbuilder modules --deck-path ./deck --version 1.2.3
~~~
- For legacy release branches, make sure the version contains the release
  marker (for example ` + "`release-2.27.x`" + `) so ` + "`app/scripts/modules`" + ` is scanned`,
		docLinks: []HttpLink{docsBase + "#module-layout"},
	}

	invalidVersionIssue = &Issue{
		id: InvalidVersionId,
		mdMsg: `
# Invalid version!

The release version must be a full semantic version: ` + "`MAJOR.MINOR.PATCH`" + `,
optionally followed by ` + "`-prerelease`" + ` and ` + "`+build`" + ` parts.

## Examples:
- ` + "`1.4.0`" + `
- ` + "`2021.4.28-21.37.41.master`" + `
- ` + "`2.27.3-release-2.27.x`",
		extLinks: []HttpLink{"https://semver.org"},
	}

	commandNotFoundIssue = &Issue{
		id: CommandNotFoundId,
		mdMsg: `
# Required tool not found!

A step needs an executable that is not on your PATH.

## Things you can try:
- Install the JFrog CLI and make sure ` + "`jfrog`" + ` is on your PATH
- Install yarn, or pre-install ` + "`node_modules`" + ` (a missing yarn only skips the install step)
- For the legacy build, check that ` + "`app/scripts/modules/build_modules.sh`" + ` exists and is executable`,
		extLinks: []HttpLink{"https://jfrog.com/getcli/"},
	}

	missingInputIssue = &Issue{
		id: MissingInputId,
		mdMsg: `
# Missing inputs!

Every input is required. Each one can be given as a flag, an
` + "`INPUT_<NAME>`" + ` environment variable, a ` + "`.env`" + ` entry or a config file field.

## Example:
~~~
$ INPUT_ARTIFACTORY_TOKEN=... deckbuilder publish \
    --deck-path ./deck --version 1.2.3 \
    --artifactory-url https://artifactory.example.com \
    --artifactory-resolve-repo npm-remote --artifactory-deploy-repo npm-local \
    --build-name deck --build-number 42 --build-url https://ci.example.com/42
~~~`,
		docLinks: []HttpLink{docsBase + "#inputs"},
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The config file could not be read or does not match the schema.

## Things you can try:
- Check the CUE syntax of the file
- Remove unknown fields; the schema is closed
- Pass a different file with ` + "`--config`",
		docLinks: []HttpLink{docsBase + "#configuration"},
		extLinks: []HttpLink{"https://cuelang.org/docs/"},
	}

	artifactoryAuthFailedIssue = &Issue{
		id: ArtifactoryAuthFailedId,
		mdMsg: `
# Could not configure Artifactory!

` + "`jfrog config add`" + ` failed for a reason other than the server alias already
existing.

## Things you can try:
- Verify the Artifactory URL is reachable
- Check that the access token is valid and not expired
- Inspect the existing configuration:
~~~
$ jfrog config show
~~~`,
	}

	manifestInvalidIssue = &Issue{
		id: ManifestInvalidId,
		mdMsg: `
# Unreadable package.json!

A module manifest is missing or is not a JSON object, so its version could
not be stamped.

## Things you can try:
- Validate the file with ` + "`node -e 'require(\"./package.json\")'`" + `
- Remove the directory from the module root if it is not a module`,
	}

	stepFailedIssue = &Issue{
		id: StepFailedId,
		mdMsg: `
# Publishing stopped!

A pipeline step failed. Modules published before the failure stay published;
nothing is rolled back.

## Things you can try:
- Re-run with ` + "`--verbose`" + ` to see every command and its working directory
- Preview the commands without running them:
~~~
$ deckbuilder publish --dry-run ...
~~~`,
	}

	issues = map[Id]*Issue{
		noModulesResolvedIssue.Id():     noModulesResolvedIssue,
		invalidVersionIssue.Id():        invalidVersionIssue,
		commandNotFoundIssue.Id():       commandNotFoundIssue,
		missingInputIssue.Id():          missingInputIssue,
		configLoadFailedIssue.Id():      configLoadFailedIssue,
		artifactoryAuthFailedIssue.Id(): artifactoryAuthFailedIssue,
		manifestInvalidIssue.Id():       manifestInvalidIssue,
		stepFailedIssue.Id():            stepFailedIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	return slices.SortedFunc(maps.Values(issues), func(a, b *Issue) int {
		return cmp.Compare(a.id, b.id)
	})
}

// Get returns the entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
