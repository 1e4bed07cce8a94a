package types

// Version is the llvmpack application version, overridden at build time via
// -ldflags "-X github.com/m-mizutani/llvmpack/pkg/domain/types.Version=..."
var Version = "dev"

// AppName is used for the CLI command name and log attributes
const AppName = "llvmpack"
