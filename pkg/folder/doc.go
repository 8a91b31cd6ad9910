// Package folder implements virtual folders: named boolean expressions over
// feed items.
//
// A [Folder] pairs a name with a predicate tree built from [Leaf], [Not] and
// [Branch] nodes. Folders are declared in a FolderCatalog document and
// loaded into a [Catalog], which classifies items into every folder whose
// tree matches.
//
// Construction validates everything up front. Evaluation is total: it never
// fails and never mutates the item.
package folder
