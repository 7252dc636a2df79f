// Package config loads the YAML run configuration.
//
// Every field has a default matching the stock conversion, so an empty
// or absent file is valid. String values may contain {pkg}, replaced by
// the runtime package in internal form (slashes) by Expand.
//
// Example:
//
//	namespaces:
//	  from: official
//	  to: intermediary
//	entrypoint:
//	  base: "{pkg}/ConvertedModInitializer"
//	hoist:
//	  - Lnet/minecraftforge/api/distmarker/OnlyIn;
//	disable_passes: [dispatch]
//	synthetic:
//	  - obf: net/fabricmc/api/EnvType
//	    deobf: net/minecraftforge/api/distmarker/Dist
//	    fields:
//	      SERVER: DEDICATED_SERVER
package config
