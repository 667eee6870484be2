// Public domain.

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/soniakeys/exit"

	"github.com/soniakeys/rmblos/internal/config"
)

const versionString = "mkcfg version 0.1 Go source."
const copyrightString = "Public domain."
const defPath = "rmblos.yaml"

func main() {
	defer exit.Handler()

	flag.Usage = func() {
		os.Stderr.WriteString(`Usage:
  mkcfg                  Write ` + defPath + ` in the current directory.
  mkcfg -v               Display version and copyright.
  mkcfg -o=<file>        Write to another file.
  mkcfg -r=<name>        Name the region.
  mkcfg -f=<fits file>   Name the region's map.
  mkcfg -w               Overwrite an existing file.

For full documentation:
   go doc rmblos/mkcfg
`)
	}
	path := flag.String("o", defPath, "output file")
	name := flag.String("r", "", "region name")
	fits := flag.String("f", "", "region map")
	over := flag.Bool("w", false, "overwrite")
	vers := flag.Bool("v", false, "display version and copyright")
	flag.Parse()
	if *vers {
		fmt.Println(versionString)
		fmt.Println(copyrightString)
		os.Exit(0)
	}
	if flag.NArg() > 0 {
		flag.Usage()
		os.Exit(1)
	}
	if err := write(*path, *name, *fits, *over); err != nil {
		exit.Log(err)
	}
	fmt.Println("wrote", *path)
}

// write saves the default configuration with the region named.
func write(path, name, fits string, over bool) error {
	if !over {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s exists, use -w to overwrite", path)
		}
	}
	c := config.Default()
	c.Region.Name = name
	c.Region.FITS = fits
	return config.Save(path, &c)
}
