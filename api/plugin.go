package api

type HookType uint8

const (
	SubmitHook HookType = iota
	ModifyHook
)

type PluginHandler func(*PluginContext)

type PluginMeta struct {
	Name   string `yaml:"Name"`
	Path   string `yaml:"Path"`
	Config string `yaml:"Config"`
}

// A plugin is a shared object that implements the Plugin interface
type Plugin interface {
	// Get the plugin name, should be consistent with the config file
	Name() string

	// Get the plugin version, could be used for simple version control
	Version() string

	// Load the plugin with the metadata, e.g., read the config file
	Load(meta PluginMeta) error

	// Unload the plugin, e.g., flush and close log sinks
	Unload(meta PluginMeta) error

	/*
		Hook processing functions:
			@param ctx: The context of the hook. The request and other
			            data are accessed through the context, and the
			            plugin's verdict is stored back into it.
		See PluginContext for details.
	*/
	SubmitHook(ctx *PluginContext)
	ModifyHook(ctx *PluginContext)
}

// SubmitRequest is the payload of a SubmitHook dispatch. Job is borrowed
// mutably for the duration of the hook chain.
type SubmitRequest struct {
	Job       *JobDescriptor
	SubmitUID uint32
}

// ModifyRequest is the payload of a ModifyHook dispatch.
type ModifyRequest struct {
	Incoming  *JobDescriptor
	Stored    *JobDescriptor
	SubmitUID uint32
}
