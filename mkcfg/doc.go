/*
Command mkcfg writes a default configuration file for rmblos.

Usage

Command line options:

  mkcfg                      Write rmblos.yaml in the current directory.
  mkcfg -v                   Display version and copyright.
  mkcfg -o=<file>            Write to another file.
  mkcfg -r=<name>            Name the region.
  mkcfg -f=<fits file>       Name the region's map.
  mkcfg -w                   Overwrite an existing file.

Output

The file holds every setting rmblos recognizes, with its default value.
The region section is left mostly empty.  Before running rmblos, fill in
at least the map, the cloud distance and Jeans length, and the chemical
model parameters, then adjust other settings as needed.  Settings left at
their defaults may be deleted from the file.

An existing file is not overwritten unless -w is given.
*/
package main
