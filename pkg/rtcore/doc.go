// Package rtcore assembles the runtime that compiled programs run against.
//
// # Overview
//
// A Runtime bundles the pieces a program needs at run time:
//
//   - a reference-counted allocator (rt/rc) over a host memory source
//   - a console bound to the process's standard streams (rt/console)
//   - a structured logger for allocator diagnostics
//
// Nothing is global: each Runtime owns its allocator and console, and the
// program receives the Runtime as an explicit argument.
//
// # Configuration
//
// Options select the host ("heap" or "pages"), handle validation, an optional
// memory budget, the console code page and logging. OptionsFromEnv reads the
// same settings from RTCORE_* environment variables:
//
//	RTCORE_HOST=pages
//	RTCORE_CHECKED=false
//	RTCORE_MEMORY_LIMIT=64MiB
//	RTCORE_CODEPAGE=windows-1252
//	RTCORE_LOG=debug
//	RTCORE_LOG_JSON=true
//
// # Entry Point
//
//	func main() {
//		rtcore.Main(rtcore.DefaultOptions(), func(rt *rtcore.Runtime) int {
//			s, err := rt.Alloc().New(16)
//			if err != nil {
//				return 1
//			}
//			defer s.Drop()
//			_ = rt.Console().Println("hello")
//			return 0
//		})
//	}
//
// Run converts a panic in the program into exit code 101 and reports blocks
// still live when the program returns.
package rtcore
