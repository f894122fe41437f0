// Package dokd integrates the DOK Dsc PowerShell module.
//
// It knows the four DOK Dsc commands and the three tasks of each
// collection, rendered as PowerShell command lines:
//
//	Initialize-DOKDsc;
//	Restore-DOKDscModule;
//	Invoke-DOKDscBuild;
//	New-DOKDscCollection -Name '<name>';
//	Invoke-DOKDscBuild -WorkspacePath '<path>' -Name '<name>' [-Force];
//	Publish-DOKDscCollection -WorkspacePath '<path>' -Name '<name>';
//
// Values are written as single-quoted PowerShell literals with embedded
// quotes doubled.
//
// The Dispatcher sends commands to one terminal, started on first use and
// reused until its shell exits. Commands do nothing while no workspace
// folder is open. The TaskProvider lists collection tasks for the folders
// of the workspace.
package dokd
