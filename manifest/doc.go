// Package manifest reads modpack manifests into component references.
//
// A manifest is the CurseForge style manifest.json found at the root of a
// modpack archive:
//
//	{
//	  "manifestType": "minecraftModpack",
//	  "name": "My Pack",
//	  "version": "1.0.0",
//	  "minecraft": {"version": "1.20.1"},
//	  "files": [{"projectID": 238222, "fileID": 4712868, "required": true}]
//	}
//
// Parse preserves the order of the files list and does not remove duplicates.
// A manifest without a files list is rejected with ErrMalformedManifest.
//
// Archive gives access to the manifest and the KubeJS override scripts
// bundled inside a modpack zip.
package manifest
