// Command jackknife runs tool scripts in isolated, uv-managed environments,
// reusing compatible environments where possible.
package main

import "os"

func main() {
	os.Exit(Execute())
}
