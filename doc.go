/*
Command rmblos estimates line of sight magnetic field strengths in a
molecular cloud from Faraday rotation measures of background radio sources.

Contents

Version 0.3

  Program overview
  Installing
  Command line usage
  Configuration
  File formats
  Algorithm outline


Program overview

Input is a catalogue of rotation measures, a FITS map of visual extinction
or hydrogen column density covering the cloud, and a set of chemical
model profiles giving the electron abundance through the cloud as a
function of extinction.  Output is a set of tables, the last of which,
FinalBLOSResults, holds the field strength at each usable catalogue source
behind the cloud with upper and lower uncertainties in microgauss.

A rotation measure is an integral along the whole line of sight, most of
which lies outside the cloud.  Sources seen through low extinction near
the cloud serve as references for the Galactic foreground and background.
Their mean is subtracted from the rotation measure of every other source,
leaving the part due to the cloud.  Dividing that by the electron column
density through the cloud, from the chemical model, gives the field.

A run looks like this:

  $ mkcfg -r Oriona
  $ vi rmblos.yaml
  $ rmblos
  ==================================================================
  rmblos version 0.3 Go source.
  region Oriona, config rmblos.yaml
  ...
  tables written to FileOutput

Progress and a summary of each stage are logged to stderr, and to a log
file if one is configured.  Warnings do not stop the run.  Conditions
that leave no meaningful result, such as fewer than two matched sources
or no reference candidates, stop the run with a message naming the stage
and the settings in effect.  Tables are written only after every stage
has succeeded.


Installing

You need Go 1.22 or later.

  go install github.com/soniakeys/rmblos@latest
  go install github.com/soniakeys/rmblos/mkcfg@latest

Command synth, in the same repository, generates a synthetic cloud with
its catalogue and chemical profiles for trying out the program.


Command line usage

  rmblos [-c <config-file>] [-o <output-dir>]
  rmblos -h     display help and quick reference
  rmblos -v     display version and copyright

The config file defaults to rmblos.yaml in the current directory.  -o
overrides output.dir of the config file.


Configuration

The config file is YAML.  Settings not given take default values; mkcfg
writes the complete default configuration as a starting point.  The
region section has no defaults and must name at least the FITS map,
cloud distance and Jeans length in parsecs, and the chemical model
parameters n0, t0 and g0.  Optional pixel bounds xmin, xmax, ymin, ymax
restrict the region.  Bounds are clipped to the map.

Other sections control the matching of sources to map pixels (map), the
choice of reference sources (thresholds, proximity, anomaly, reference,
quadrants), the field computation (blos) and the uncertainty sweep
(uncertainty).  rmblos -h lists the sections.


File formats

The catalogue is a delimited text table with a header row naming the
columns RA(deg), RA_Err(s), Dec(deg), Dec_Err(arcsec), l(deg), b(deg),
RM(rad/m2) and RM_Err(rad/m2).  The separator and the token for missing
values are configurable, tab and "nan" by default.  Rows with a missing
position, rotation measure or rotation measure error are skipped.

The map is the primary image of a FITS file with a celestial TAN or CAR
projection.  Its quantity, VisualExtinction or HydrogenColumnDensity, is
given by region.quantity.  Column density is converted to extinction by
the blos.extinction_to_hydrogen factor.

Chemical profiles are whitespace separated text files, one per model run,
in input.chem_dir under a directory named for the model parameters, as
n1000_T15_G1.  The first line is a title.  The second names the columns,
which must include Av and e-.  Files are named by input.profile_template,
default Av_T{T}_n{n}.out, where {T} and {n} are replaced by signed
percentage changes of model temperature and density, as Av_T0_n+2.5.out.
The unperturbed profile Av_T0_n0.out is required.  Perturbed profiles
that are missing are skipped with a warning.

Output tables are delimited text in output.dir, one file per table.


Algorithm outline

1.  Pixels of the map that are missing or non-physical (negative) are
filled or repaired by interpolation as configured.

2.  Catalogue sources are matched to the map pixels containing them.
For each, the minimum and maximum extinction within the catalogue's
positional resolution are also found.

3.  Sources under an extinction threshold are reference candidates.  The
threshold depends on where the cloud lies in the Galaxy.  Candidates
close to high extinction, or with anomalous rotation measures, are
rejected.  At most a fraction of all sources are kept, in order of
increasing extinction.

4.  The number of reference sources is chosen where the fields computed
at the remaining sources stop changing as more references are added.
Each held out source gives a trend of field against reference count.
For a sweep of thresholds, the count starting the longest run of
changes within the threshold is found for each trend, and the most
common count over trends and thresholds is chosen.  The count is then
extended until every quadrant around the cloud's major axis that has
candidates is represented.

5.  The mean rotation measure and extinction of the chosen references
are subtracted from the other sources.  The electron column density
through half the remaining extinction is integrated from the chemical
profile and the field follows as

  B = RM / (0.812 · Ne · L · 2)

with Ne in cm⁻² and L the path length of a cm in pc.

6.  Fields are recomputed with profiles for perturbed model density and
temperature.  The smallest usable perturbation of each is combined in
quadrature with the rotation measure error and the spread of fields
over the extinction extremes at the source, giving upper and lower
uncertainties.

-------------
Public domain.
*/
package main
