package mcpserver

// TaggingPolicyContract describes the folder-tag policy for LLM consumers,
// so they can predict which tags a note will carry at a given path.
const TaggingPolicyContract = `# Othala Tagging Policy

Othala maintains one folder-derived tag set on every Markdown note, computed
from the note's storage path and the active settings.

## Settings

- ` + "`" + `folder_depth` + "`" + ` — one of:
  - ` + "`" + `single` + "`" + `: the immediate parent folder. ` + "`" + `a/b/c/note.md` + "`" + ` → ` + "`" + `c` + "`" + `
  - ` + "`" + `split-pair` + "`" + `: parent and grandparent as two tags. → ` + "`" + `c` + "`" + `, ` + "`" + `b` + "`" + `
  - ` + "`" + `joined-pair` + "`" + `: grandparent/parent joined. → ` + "`" + `b/c` + "`" + `
  - ` + "`" + `full` + "`" + `: the whole folder path. → ` + "`" + `a/b/c` + "`" + `
- ` + "`" + `tag_prefix` + "`" + ` / ` + "`" + `tag_suffix` + "`" + ` — wrapped around every derived
  tag with no implied delimiter (include your own separator if you want one).

## Rules

1. Notes at the vault root get no folder tag.
2. The derived tags live in the note's YAML frontmatter ` + "`" + `tags` + "`" + ` list
   when a frontmatter block exists, otherwise in an inline ` + "`" + `tags:: ...` + "`" + `
   line if the note has one; a note with neither gets a frontmatter block.
3. Moving a note replaces the tags derived from its old folder with the ones
   for its new folder. Tags you added by hand are never touched.
4. Tag matching is exact and case-sensitive.
`
