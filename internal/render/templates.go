package render

import "html/template"

const tmplAttrs = `{{define "attrs"}} class="{{.Class}}"{{with .ID}} id="{{.}}"{{end}}{{with .Style}} style="{{.}}"{{end}}{{if .Editor}} data-pb-path="{{.Path}}"{{end}}{{end}}`

const tmplControls = `{{define "controls"}}<div class="pb-controls" contenteditable="false">` +
	`<button type="button" class="pb-drag-handle" data-pb-action="drag" data-pb-path="{{.Path}}" draggable="true" aria-label="Drag">&#8942;&#8942;</button>` +
	`<button type="button" class="pb-delete" data-pb-action="delete" data-pb-path="{{.Path}}" aria-label="Delete">&times;</button>` +
	`</div>{{end}}`

const tmplPage = `{{define "page"}}<div class="pb-page{{if .Editor}} pb-editor{{if .Active}} pb-drop-active{{end}}{{end}}"{{if .Editor}} data-pb-target="{{.Root}}"{{end}}>` +
	`{{range .Sections}}{{template "section" .}}{{end}}` +
	`{{if .Editor}}<button type="button" class="pb-add" data-pb-action="add-section" data-pb-target="{{.Root}}">Add section</button>{{end}}` +
	`</div>{{end}}`

const tmplSection = `{{define "section"}}<section{{template "attrs" .Attrs}}>` +
	`{{if .Editor}}{{template "controls" .Attrs}}{{end}}` +
	`<div class="pb-section-inner"{{if .Editor}} data-pb-target="{{.Path}}"{{end}}>` +
	`{{range .Rows}}{{template "row" .}}{{else}}{{if .Editor}}<div class="pb-dropzone pb-dropzone--empty" data-pb-target="{{.Path}}">Add a row to this section</div>{{end}}{{end}}` +
	`</div>` +
	`{{if .Editor}}<button type="button" class="pb-add" data-pb-action="add-row" data-pb-target="{{.Path}}">Add row</button>{{end}}` +
	`</section>{{end}}`

const tmplRow = `{{define "row"}}<div{{template "attrs" .Attrs}}>` +
	`{{if .Editor}}{{template "controls" .Attrs}}{{end}}` +
	`{{range .Columns}}{{template "column" .}}{{end}}` +
	`{{if .Editor}}<button type="button" class="pb-add" data-pb-action="add-column" data-pb-target="{{.Path}}">Add column</button>{{end}}` +
	`</div>{{end}}`

const tmplColumn = `{{define "column"}}<div{{template "attrs" .Attrs}} data-pb-width="{{.Width}}">` +
	`{{if .Editor}}<div class="pb-dropzone" data-pb-target="{{.Path}}">{{end}}` +
	`{{range .Components}}{{template "component" .}}{{else}}{{if .Editor}}<span class="pb-dropzone-hint">Drop a component here</span>{{end}}{{end}}` +
	`{{if .Editor}}</div>{{end}}` +
	`</div>{{end}}`

const tmplComponent = `{{define "component"}}<div{{template "attrs" .Attrs}} data-pb-type="{{.Type}}">` +
	`{{if and .Editor .Path}}{{template "controls" .Attrs}}{{end}}` +
	`{{.Content}}` +
	`</div>{{end}}`

const tmplDocument = `{{define "document"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>.pb-row{display:flex;flex-wrap:wrap}.pb-column{box-sizing:border-box}.pb-section--container{max-width:1200px;margin:0 auto}</style>
</head>
<body>
{{.Body}}
</body>
</html>
{{end}}`

var wrappers = template.Must(template.New("wrappers").Parse(
	tmplAttrs + tmplControls + tmplPage + tmplSection + tmplRow + tmplColumn + tmplComponent + tmplDocument,
))
