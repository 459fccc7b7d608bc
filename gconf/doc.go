/*

Package gconf implements a configuration store intended to be used as a global,
in-database configuration.

Each package keeps a single configuration object, stored under "_c:<package>".
It is written once from the genesis file and loaded whenever the package is
opened.

*/
package gconf
