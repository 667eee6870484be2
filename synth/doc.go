/*
Command synth generates a synthetic cloud for trying out rmblos.

Usage

   synth [options] [output dir]
   synth -v

Options:

   -n <sources>     number of catalogue sources, default 300
   -b <field>       line of sight field in the cloud, µG, default 50
   -s <seed>        random seed, default 1

The output directory, default "synthetic", receives:

   cloud.fits            hydrogen column density map of an elongated cloud
   catalogue.tsv         rotation measures of background sources
   ChemicalAbundance/    chemical profiles for the model and every default
                         perturbation of density and temperature
   rmblos.yaml           a configuration running rmblos on the above

The map is an inclined Gaussian ridge on a low background with a little
noise, a few missing pixels and a few negative ones.  Sources are placed
uniformly over the map.  Each rotation measure is a constant foreground
plus noise plus, behind the cloud, the contribution of the given field
through half the cloud's extinction, computed with the model profile.
rmblos run on the output should recover the field at sources behind
the cloud.

The same seed always gives the same output.
*/
package main
