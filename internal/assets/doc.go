// Package assets provides the stylesheets and HTML templates of merged
// documents.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - go:embed styles and templates
//	    ├── FilesystemLoader  - a user directory on disk
//	    └── AssetResolver     - custom-first, embedded fallback
//
// Built-in assets: the "github" style (main CSS of the merged document),
// the "print" style (page breaks for PDF export) and the "cover" template.
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css
//	└── templates/
//	    └── {name}.html
//
// Overriding one file keeps the defaults for everything else.
//
// # Security
//
// Asset names are validated to prevent path traversal.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
