// Package task provides task discovery and execution for dokd.
//
// Tasks are contributed per workspace folder by Sources registered with a
// Discovery. Discovery walks the workspace folders in order and asks each
// source for the tasks of each local folder:
//
//	discovery := task.NewDiscovery(
//	    task.WithSource(sources.NewDOKDscSource()),
//	    task.WithLogger(logger),
//	)
//
//	tasks, err := discovery.Discover(ctx, ws.Folders())
//
// Discovery is best effort. A folder whose source fails contributes nothing
// and the failure is logged at debug level; callers only see the error of a
// cancelled context.
//
// # Task Definitions
//
// Every task carries a Definition: a JSON object with a "type" property and
// provider specific fields. Hosts use it to re-run or customize a task:
//
//	def := task.NewDefinition("dokd").With("collectionName", "Web").With("force", true)
//	def.Type()                       // "dokd"
//	def.Get("collectionName").String() // "Web"
//
// # Task Execution
//
// The Executor runs shell tasks through the configured shell (PowerShell by
// default) in the task's working directory, streaming output lines to
// ExecutionListeners:
//
//	executor := task.NewExecutor(task.DefaultExecutorConfig())
//	exec, err := executor.ExecuteSync(ctx, tasks[0])
//	if exec.State() != task.ExecutionStateSucceeded {
//	    // exec.ExitCode(), exec.Err()
//	}
//
// # Subpackages
//
//   - sources: task source implementations
package task
