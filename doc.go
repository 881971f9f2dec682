/*
Package ixdb implements a schema-driven indexed record store on top of a
key-value store (in this case, on top of Bolt).

We implement:

1. Tables, collections of packed records keyed by a 64-bit primary key id,
either auto-incremented or supplied by the caller.

2. Indices, allowing quick ordered lookup of table data by values derived
from a record: plain field values, computed transforms, tokenized
multi-key extractions, and conditional (filtered) keys.

3. Ordered, bidirectional, restartable iteration over tables, indices,
duplicate groups, and distinct index keys.

# Technical Details

**Buckets.**
We rely on scoped namespaces for keys called buckets. Bolt supports them
natively. Each table gets a top-level bucket named after it, plus one
bucket per index named `<Table>__<index>`. A `__meta` bucket holds
per-table state (the id counter).

**Key encoding.**
Keys are raw bytes ordered by memcmp. Fixed-width integers are big-endian
so that byte order equals numeric order. Composite keys concatenate the
variable-length parts with fixed-width parts; because the suffix widths
are known, the parts are recoverable.

**Duplicate indices.**
A non-unique index entry's bucket key is the index key followed by the
duplicate-sort subkey and the 8-byte big-endian primary key id. memcmp
over the concatenation is the duplicate comparator; with no custom subkey
the id suffix orders duplicates in insertion order.

**Record payloads.**
A record is a single packed byte string: fields in schema order,
fixed-width values inline, variable-length values behind 32-bit
little-endian length prefixes. Field accessors return views directly into
Bolt's memory-mapped pages; a view stays valid until its transaction ends
and must not be retained past that point.
*/
package ixdb
