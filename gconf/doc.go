/*
Package gconf implements a configuration store intended to be used as a
global, in-database configuration.

Each package keeps at most one configuration object, saved under the
"_c:<package>" key. Configuration is loaded from the genesis file by
InitConfig and read at runtime with Load.
*/
package gconf
