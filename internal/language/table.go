package language

// extensions maps a lower-cased file extension to its candidate languages.
var extensions = map[string][]string{
	// C family
	"c":   {"C"},
	"h":   {"C", "C++", "Objective-C"},
	"cc":  {"C++"},
	"cpp": {"C++"},
	"cxx": {"C++"},
	"hh":  {"C++"},
	"hpp": {"C++"},
	"hxx": {"C++"},
	"ino": {"C++"},
	"m":   {"Objective-C", "MATLAB", "Mercury"},
	"mm":  {"Objective-C++"},
	"cs":  {"C#"},
	"csx": {"C#"},

	// JVM
	"java":   {"Java"},
	"kt":     {"Kotlin"},
	"kts":    {"Kotlin"},
	"scala":  {"Scala"},
	"sc":     {"Scala"},
	"groovy": {"Groovy"},
	"gradle": {"Groovy"},
	"clj":    {"Clojure"},
	"cljs":   {"Clojure"},
	"cljc":   {"Clojure"},
	"edn":    {"Clojure"},

	// Web
	"js":     {"JavaScript"},
	"mjs":    {"JavaScript"},
	"cjs":    {"JavaScript"},
	"jsx":    {"JavaScript"},
	"ts":     {"TypeScript"},
	"mts":    {"TypeScript"},
	"cts":    {"TypeScript"},
	"tsx":    {"TSX"},
	"vue":    {"Vue"},
	"svelte": {"Svelte"},
	"astro":  {"Astro"},
	"html":   {"HTML"},
	"htm":    {"HTML"},
	"css":    {"CSS"},
	"scss":   {"SCSS"},
	"sass":   {"Sass"},
	"less":   {"Less"},
	"php":    {"PHP"},
	"phtml":  {"PHP"},
	"elm":    {"Elm"},
	"coffee": {"CoffeeScript"},

	// Systems
	"go":  {"Go"},
	"rs":  {"Rust"},
	"zig": {"Zig"},
	"nim": {"Nim"},
	"d":   {"D"},
	"v":   {"Verilog", "V"},
	"sv":  {"SystemVerilog"},
	"vhd": {"VHDL"},
	"asm": {"Assembly"},
	"s":   {"Assembly"},

	// Scripting
	"py":   {"Python"},
	"pyi":  {"Python"},
	"pyx":  {"Cython"},
	"rb":   {"Ruby"},
	"rake": {"Ruby"},
	"pl":   {"Perl", "Prolog"},
	"pm":   {"Perl"},
	"lua":  {"Lua"},
	"r":    {"R"},
	"jl":   {"Julia"},
	"tcl":  {"Tcl"},
	"sh":   {"Shell"},
	"bash": {"Shell"},
	"zsh":  {"Shell"},
	"fish": {"Fish"},
	"ps1":  {"PowerShell"},
	"psm1": {"PowerShell"},
	"bat":  {"Batchfile"},
	"cmd":  {"Batchfile"},
	"awk":  {"Awk"},

	// Functional
	"hs":    {"Haskell"},
	"lhs":   {"Haskell"},
	"ml":    {"OCaml"},
	"mli":   {"OCaml"},
	"fs":    {"F#", "GLSL"},
	"fsi":   {"F#"},
	"fsx":   {"F#"},
	"ex":    {"Elixir"},
	"exs":   {"Elixir"},
	"erl":   {"Erlang"},
	"hrl":   {"Erlang"},
	"lisp":  {"Common Lisp"},
	"el":    {"Emacs Lisp"},
	"scm":   {"Scheme"},
	"rkt":   {"Racket"},
	"purs":  {"PureScript"},
	"gleam": {"Gleam"},

	// Mobile
	"swift": {"Swift"},
	"dart":  {"Dart"},

	// Data, query and config languages people still write by hand
	"sql":        {"SQL"},
	"graphql":    {"GraphQL"},
	"gql":        {"GraphQL"},
	"proto":      {"Protocol Buffer"},
	"tf":         {"HCL"},
	"hcl":        {"HCL"},
	"nix":        {"Nix"},
	"yaml":       {"YAML"},
	"yml":        {"YAML"},
	"toml":       {"TOML"},
	"xml":        {"XML"},
	"glsl":       {"GLSL"},
	"hlsl":       {"HLSL"},
	"wgsl":       {"WGSL"},
	"sol":        {"Solidity"},
	"cob":        {"COBOL"},
	"f90":        {"Fortran"},
	"f":          {"Fortran"},
	"pas":        {"Pascal"},
	"ada":        {"Ada"},
	"adb":        {"Ada"},
	"cr":         {"Crystal"},
	"mk":         {"Makefile"},
	"cmake":      {"CMake"},
	"dockerfile": {"Dockerfile"},

	// Docs
	"md":       {"Markdown"},
	"markdown": {"Markdown"},
	"rst":      {"reStructuredText"},
	"tex":      {"TeX"},
}
