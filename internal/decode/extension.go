package decode

// WasmExtension names a post-MVP WebAssembly proposal that this decoder
// deliberately does not support. See https://webassembly.org/roadmap/ and
// https://github.com/WebAssembly/proposals.
type WasmExtension uint8

const (
	ExtensionNontrappingFloatToInt WasmExtension = iota
	ExtensionSignExtensionOps
	ExtensionMultiValue
	ExtensionReferenceTypes
	ExtensionBulkMemoryOperations
	ExtensionSimd
	ExtensionThreadsAtomics
	ExtensionMemory64
	ExtensionExceptionHandling
	ExtensionTailCalls
	ExtensionTypeImports
	ExtensionMultiMemory
	ExtensionModuleLinking
)

// Name is the extension's human-readable name.
func (e WasmExtension) Name() string {
	switch e {
	case ExtensionNontrappingFloatToInt:
		return "non-trapping float-to-int conversions"
	case ExtensionSignExtensionOps:
		return "sign-extension operators"
	case ExtensionMultiValue:
		return "multiple return/result values"
	case ExtensionReferenceTypes:
		return "reference types"
	case ExtensionBulkMemoryOperations:
		return "bulk memory operations"
	case ExtensionSimd:
		return "SIMD"
	case ExtensionThreadsAtomics:
		return "threads and atomics"
	case ExtensionMemory64:
		return "64-bit memory"
	case ExtensionExceptionHandling:
		return "exception handling"
	case ExtensionTailCalls:
		return "tail calls"
	case ExtensionTypeImports:
		return "type imports"
	case ExtensionMultiMemory:
		return "multiple memories"
	case ExtensionModuleLinking:
		return "module linking"
	default:
		return "unknown extension"
	}
}

// URL is the extension proposal's canonical GitHub repository, part of
// this decoder's external error contract: callers may rely on the exact
// URL returned for a given extension.
func (e WasmExtension) URL() string {
	switch e {
	case ExtensionNontrappingFloatToInt:
		return "https://github.com/WebAssembly/nontrapping-float-to-int-conversions"
	case ExtensionSignExtensionOps:
		return "https://github.com/WebAssembly/sign-extension-ops"
	case ExtensionMultiValue:
		return "https://github.com/WebAssembly/multi-value"
	case ExtensionReferenceTypes:
		return "https://github.com/WebAssembly/reference-types"
	case ExtensionBulkMemoryOperations:
		return "https://github.com/WebAssembly/bulk-memory-operations"
	case ExtensionSimd:
		return "https://github.com/WebAssembly/simd"
	case ExtensionThreadsAtomics:
		return "https://github.com/WebAssembly/threads"
	case ExtensionMemory64:
		return "https://github.com/WebAssembly/memory64"
	case ExtensionExceptionHandling:
		return "https://github.com/WebAssembly/exception-handling"
	case ExtensionTailCalls:
		return "https://github.com/WebAssembly/tail-call"
	case ExtensionTypeImports:
		return "https://github.com/WebAssembly/proposal-type-imports"
	case ExtensionMultiMemory:
		return "https://github.com/WebAssembly/multi-memory"
	case ExtensionModuleLinking:
		return "https://github.com/WebAssembly/module-linking"
	default:
		return ""
	}
}
